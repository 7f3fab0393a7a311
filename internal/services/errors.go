package services

import (
	"context"
	"errors"
	"fmt"

	"spontimeet/internal/domain"
)

// storeErr wraps a store failure with the operation name. A deadline the
// caller supplied surfaces as domain.ErrTimeout so controllers can map it
// instead of reporting an opaque internal error.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
