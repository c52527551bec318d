package download

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/ccollins476ad/imgfetch/fileutil"
)

// Kind categorizes the failure of a single URL.
type Kind int

const (
	KindUnexpected Kind = iota
	KindTimeout
	KindConnection
	KindStatus
	KindNetwork
	KindPermission
	KindDisk
	KindDirectoryAccess
)

var kindNames = map[Kind]string{
	KindUnexpected:      "unexpected",
	KindTimeout:         "timeout",
	KindConnection:      "connection",
	KindStatus:          "http status",
	KindNetwork:         "network",
	KindPermission:      "permission",
	KindDisk:            "disk",
	KindDirectoryAccess: "directory access",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return name
}

// StatusError is returned when a server responds with a non-2xx status.
type StatusError struct {
	Code   int
	Status string // e.g., "404 Not Found"
}

func (e *StatusError) Error() string {
	return "error status: " + e.Status
}

// Error is the categorized failure of a single URL.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: url=%s err=%v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify determines the kind of failure that err represents.
func Classify(err error) Kind {
	var (
		statusErr *StatusError
		netErr    net.Error
		opErr     *net.OpError
		dnsErr    *net.DNSError
		urlErr    *url.Error
	)

	switch {
	case err == nil:
		return KindUnexpected

	// Local filesystem.
	case errors.Is(err, fileutil.ErrPermission):
		return KindPermission
	case errors.Is(err, fileutil.ErrDirectoryAccess):
		return KindDirectoryAccess
	case errors.Is(err, fileutil.ErrDisk):
		return KindDisk

	// Remote.
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return KindTimeout
	case errors.As(err, &dnsErr), errors.As(err, &opErr):
		return KindConnection
	case errors.As(err, &urlErr), errors.Is(err, context.Canceled), errors.Is(err, ErrBodyRead):
		return KindNetwork

	default:
		return KindUnexpected
	}
}

// newError wraps err in an *Error with the appropriate kind.
func newError(u string, err error) *Error {
	return &Error{
		Kind: Classify(err),
		URL:  u,
		Err:  err,
	}
}
