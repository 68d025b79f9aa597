package parsing

import "fmt"

// MalformedFragmentError is returned when a detail page cannot be read at all.
// A page that parses but lacks expected sections is not an error; the
// affected fields are simply left empty.
type MalformedFragmentError struct {
	JobID   string
	Message string
	Cause   error
}

func (e *MalformedFragmentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed fragment for job %s: %s: %v", e.JobID, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed fragment for job %s: %s", e.JobID, e.Message)
}

func (e *MalformedFragmentError) Unwrap() error {
	return e.Cause
}
