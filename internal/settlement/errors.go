package settlement

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitsettle/internal/calculator"
	"github.com/mmynk/splitsettle/internal/storage"
)

// Errors returned by engine operations. They are wrapped with context;
// use errors.Is to test for them.
var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidSplit       = errors.New("invalid split")
	ErrAmountMismatch     = errors.New("amount mismatch")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrExpired            = errors.New("split expired")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// translate maps errors from lower layers onto the engine's error kinds.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, calculator.ErrAmountMismatch):
		return fmt.Errorf("%w: %v", ErrAmountMismatch, err)
	case errors.Is(err, calculator.ErrInvalidSplit):
		return fmt.Errorf("%w: %v", ErrInvalidSplit, err)
	default:
		return err
	}
}
