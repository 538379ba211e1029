// Package remote classifies failures of the best-effort collaborators an
// order is mirrored to after it has been committed locally.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type Kind string

const (
	KindPermission Kind = "permission"
	KindTransient  Kind = "transient"
	KindUnknown    Kind = "unknown"
)

var ErrNotConfigured = errors.New("remote adapter not configured")

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err. Errors that were never
// classified are transient when they look like network trouble.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return KindUnknown
}

// FromStatus maps an HTTP status code to a failure kind.
func FromStatus(code int) Kind {
	switch {
	case code == 401 || code == 403:
		return KindPermission
	case code == 429 || code >= 500:
		return KindTransient
	}
	return KindUnknown
}
