package domain

import "errors"

var (
	ErrNotFound     = errors.New("user_not_found")
	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrInvalidInput = errors.New("invalid_input")
)
