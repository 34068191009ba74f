package share

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

// IsContextClosedError reports whether err comes from a cancelled or timed out request.
func IsContextClosedError(err error) bool {
	if err == nil {
		return false
	}

	err = errors.Cause(err)
	switch e := err.(type) {
	case *url.Error:
		err = e.Err
	}

	switch err {
	case context.Canceled:
	case context.DeadlineExceeded:
	default:
		return false
	}

	return true
}
