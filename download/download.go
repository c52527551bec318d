package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// ErrBodyRead indicates the response headers arrived but the body could not
// be read in full.
var ErrBodyRead = errors.New("failed to read response body")

// Content is a fetched response body along with its declared type.
type Content struct {
	Body        []byte
	ContentType string // Empty if the server did not send the header.
}

// GetBody performs an http GET with url=u using the supplied client and
// header. On success, the caller must close the returned response's body. A
// non-2xx response yields a *StatusError.
func GetBody(ctx context.Context, hc *http.Client, u string, header http.Header) (*http.Response, error) {
	log.Debugf("get: %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rsp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		rsp.Body.Close()
		return nil, &StatusError{
			Code:   rsp.StatusCode,
			Status: rsp.Status,
		}
	}

	return rsp, nil
}

// Get calls GetBody(), then reads the full response and returns it. The read
// is bounded by ctx.
func Get(ctx context.Context, hc *http.Client, u string, header http.Header) (*Content, error) {
	rsp, err := GetBody(ctx, hc, u, header)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	b, err := io.ReadAll(NewContextReader(ctx, rsp.Body))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}

	log.Debugf("got: %s bytes=%d content-type=%q", u, len(b), rsp.Header.Get("Content-Type"))

	return &Content{
		Body:        b,
		ContentType: rsp.Header.Get("Content-Type"),
	}, nil
}
