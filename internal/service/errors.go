package service

import (
	"errors"

	"github.com/linemk/belekbox-shop/internal/storage"
)

var (
	ErrProductNotFound = storage.ErrProductNotFound
	ErrInvalidPayload  = errors.New("invalid payload")
)

// PayloadError - отклонённые клиентские данные. Reason показывается покупателю/администратору.
type PayloadError struct {
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *PayloadError) Unwrap() error { return e.Err }

func (e *PayloadError) Is(target error) bool { return target == ErrInvalidPayload }

func invalidPayload(reason string, err error) error {
	return &PayloadError{Reason: reason, Err: err}
}
