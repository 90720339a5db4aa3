package store

import (
	"errors"
	"fmt"
)

// ErrRejected is matched by every validation rejection.
var ErrRejected = errors.New("rejected")

// RejectionError is returned when a command's parameters fall outside the
// allowed bounds. Message is meant to be shown to the user as is. The
// store state is unchanged when a RejectionError is returned.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return "rejected: " + e.Message
}

func (e *RejectionError) Unwrap() error {
	return ErrRejected
}

func reject(format string, args ...any) error {
	return &RejectionError{Message: fmt.Sprintf(format, args...)}
}

// UserMessage returns the user-facing text of err.
func UserMessage(err error) string {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
