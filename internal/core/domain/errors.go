package domain

import "errors"

var (
	ErrEmailConflict = errors.New("user with this email already exists")
	ErrInvalidInput  = errors.New("invalid input")
)
