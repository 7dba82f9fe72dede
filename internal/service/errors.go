package service

import "errors"

var (
	ErrNotFound           = errors.New("error not found")
	ErrAlreadyExists      = errors.New("error already exists")
	ErrQuoteUnavailable   = errors.New("error quote unavailable")
	ErrInvalidTransaction = errors.New("error invalid transaction")
)
