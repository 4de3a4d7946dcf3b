package domain

import (
	"errors"
	"fmt"
)

var (
	ErrClaimNotFound       = errors.New("claim not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCardNotActive       = errors.New("card not active")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTemporary           = errors.New("temporary failure")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
