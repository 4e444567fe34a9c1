package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicateEmail signals a unique-constraint hit on an email column.
var ErrDuplicateEmail = errors.New("email already exists")

const uniqueViolation = "23505"

func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
