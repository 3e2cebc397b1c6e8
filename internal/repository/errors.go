package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrActiveExists is returned when inserting an open timer collides with
	// the unique index guarding one active timer per (user, org)
	ErrActiveExists = errors.New("active timer already exists")

	// ErrAlreadyClosed is returned when closing a timer whose end is set
	ErrAlreadyClosed = errors.New("timer already closed")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
