package runtime

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// StorageError reports which activity store operation failed during confirmation.
// It matches both domain.ErrStorage and the underlying cause with errors.Is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%v: %s: %v", domain.ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{domain.ErrStorage, e.Err}
}
