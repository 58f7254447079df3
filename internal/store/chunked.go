package store

import (
	"context"
	"errors"
	"io"
)

// RangeOpener opens one ranged read of [start, end], both inclusive.
type RangeOpener func(ctx context.Context, start, end int64) (io.ReadCloser, error)

type chunkedReader struct {
	ctx       context.Context
	open      RangeOpener
	pos       int64 // next byte to read
	end       int64
	chunkSize int64
	windowEnd int64
	body      io.ReadCloser
	closed    bool
}

var ErrReaderClosed = errors.New("chunked reader already closed")

// NewChunkedReader reads [start, end] as a series of sequential requests of at
// most chunkSize bytes each. chunkSize <= 0 issues a single request. The first
// request is opened before returning so missing objects surface immediately.
func NewChunkedReader(ctx context.Context, open RangeOpener, start, end, chunkSize int64) (io.ReadCloser, error) {
	cr := &chunkedReader{
		ctx:       ctx,
		open:      open,
		pos:       start,
		end:       end,
		chunkSize: chunkSize,
	}
	if end < start {
		return io.NopCloser(eofReader{}), nil
	}
	if err := cr.openWindow(); err != nil {
		return nil, err
	}
	return cr, nil
}

func (cr *chunkedReader) openWindow() error {
	windowEnd := cr.end
	if cr.chunkSize > 0 && cr.pos+cr.chunkSize-1 < cr.end {
		windowEnd = cr.pos + cr.chunkSize - 1
	}
	body, err := cr.open(cr.ctx, cr.pos, windowEnd)
	if err != nil {
		return err
	}
	cr.body = body
	cr.windowEnd = windowEnd
	return nil
}

func (cr *chunkedReader) Read(p []byte) (int, error) {
	if cr.closed {
		return 0, ErrReaderClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if cr.pos > cr.end {
			return 0, io.EOF
		}
		if cr.body == nil {
			if err := cr.openWindow(); err != nil {
				return 0, err
			}
		}
		// Never read past the current window even if the backend sends more.
		limit := cr.windowEnd - cr.pos + 1
		if int64(len(p)) > limit {
			p = p[:limit]
		}
		n, err := cr.body.Read(p)
		cr.pos += int64(n)
		if cr.pos > cr.windowEnd {
			cr.body.Close()
			cr.body = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err == io.EOF {
			cr.body.Close()
			cr.body = nil
			return n, io.ErrUnexpectedEOF
		}
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (cr *chunkedReader) Close() error {
	if cr.closed {
		return nil
	}
	cr.closed = true
	if cr.body != nil {
		err := cr.body.Close()
		cr.body = nil
		return err
	}
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
