package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("unauthorized")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("storage failure")
)

// storeFailure keeps the database error in the server log only,
// callers receive the generic message.
func storeFailure(err error, message string) error {
	log.Error().Err(err).Msg(message)
	return fmt.Errorf("%w: %s", ErrStore, message)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
