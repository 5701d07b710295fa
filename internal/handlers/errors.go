package handlers

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
)

// isTransientError reports whether err is a downstream failure the client may
// retry (timeouts, dropped connections), as opposed to a terminal application
// error. The respond*Error switches map these to 503 instead of 500.
func isTransientError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
