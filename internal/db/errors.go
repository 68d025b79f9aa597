package db

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks failures of the database itself (connection,
// I/O, SQL errors) as opposed to a rejected duplicate.
var ErrStoreUnavailable = errors.New("store unavailable")

// DuplicateKeyError is returned by InsertJob when a posting with the same
// job ID is already stored. The stored row is left untouched.
type DuplicateKeyError struct {
	JobID string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("job %s already exists", e.JobID)
}

// IsDuplicate reports whether err is a DuplicateKeyError.
func IsDuplicate(err error) bool {
	var dup *DuplicateKeyError
	return errors.As(err, &dup)
}
