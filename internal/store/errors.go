package store

import (
	"errors"
	"fmt"
)

// ErrRejected is returned by Insert when admission control judges the backing
// file too large for the space left on the device. It is flow control, not a
// fault: nothing was written and the store remains usable. Callers decide
// whether to drop or hold the event.
var ErrRejected = errors.New("event rejected: backing file exceeds free space threshold")

// StorageFaultError reports a low-level storage failure during an operation.
// By the time the caller sees one, the backing file has already been
// destroyed, so the next operation runs against a freshly created empty
// store. A record being inserted when the fault occurred is lost.
type StorageFaultError struct {
	Op  string // operation that hit the fault, e.g. "insert event"
	Err error  // underlying storage-layer error
}

func (e *StorageFaultError) Error() string {
	return fmt.Sprintf("storage fault: %s: %v (store recreated)", e.Op, e.Err)
}

func (e *StorageFaultError) Unwrap() error {
	return e.Err
}

// IsStorageFault reports whether err is (or wraps) a StorageFaultError.
func IsStorageFault(err error) bool {
	var sf *StorageFaultError
	return errors.As(err, &sf)
}
