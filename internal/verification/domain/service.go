package domain

import (
	"context"
	"errors"
)

type Repository interface {
	// Upsert stores the token, replacing any existing row for the
	// same identifier.
	Upsert(ctx context.Context, token *Token) error
	FindByIdentifier(ctx context.Context, identifier string) (*Token, error)
	MarkVerified(ctx context.Context, identifier string) error
}

type Service interface {
	// Request issues a fresh 6-digit code for the identifier and
	// fires the delivery webhook best effort.
	Request(ctx context.Context, identifier string) error
	// Confirm checks the code and marks the token verified exactly
	// once. Expiry is evaluated here; there is no background sweep.
	Confirm(ctx context.Context, identifier, code string) error
}

var (
	ErrInvalidIdentifier = errors.New("invalid_identifier")
	ErrCodeMismatch      = errors.New("code_mismatch")
	ErrCodeExpired       = errors.New("code_expired")
	ErrNotFound          = errors.New("verification_not_found")
	ErrAlreadyVerified   = errors.New("already_verified")
)
