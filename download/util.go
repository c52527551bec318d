package download

import (
	"context"
	"io"
)

// ContextReader is an io.Reader that gives up once its context is done. A
// read still blocked in the underlying reader at that point is orphaned; it
// finishes in the background when the reader is closed.
type ContextReader struct {
	ctx context.Context
	r   io.Reader
}

func NewContextReader(ctx context.Context, r io.Reader) *ContextReader {
	return &ContextReader{
		ctx: ctx,
		r:   r,
	}
}

// Read implements io.Reader#Read().
func (cr *ContextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	type result struct {
		n   int
		err error
	}

	// Read into a private buffer so an orphaned read can't scribble on p
	// after we have returned.
	buf := make([]byte, len(p))
	ch := make(chan result, 1)

	go func() {
		n, err := cr.r.Read(buf)
		ch <- result{n, err}
	}()

	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	case res := <-ch:
		copy(p, buf[:res.n])
		return res.n, res.err
	}
}
