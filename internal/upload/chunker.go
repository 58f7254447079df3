package upload

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tanq16/slicer/internal/utils"
)

// Chunker cuts a stream into fixed-size chunks. Buffers come from a pool;
// whoever receives a chunk hands it back with Release.
type Chunker struct {
	SliceSize int64
	pool      sync.Pool
}

func NewChunker(sliceSize int64) *Chunker {
	return &Chunker{SliceSize: sliceSize}
}

func (c *Chunker) buffer() []byte {
	if v, ok := c.pool.Get().(*[]byte); ok {
		return (*v)[:c.SliceSize]
	}
	return make([]byte, c.SliceSize)
}

// Release returns a chunk's buffer to the pool. The chunk must not be used
// afterwards.
func (c *Chunker) Release(chunk utils.UploadChunk) {
	buf := chunk.Data[:cap(chunk.Data)]
	if int64(len(buf)) == c.SliceSize {
		c.pool.Put(&buf)
	}
}

// Run reads r until EOF and passes each chunk to emit, numbered from 1 with no
// gaps. Every chunk is SliceSize bytes except possibly the last. emit may
// block, which stops reading until it returns. Run returns the number of
// chunks emitted; an empty stream emits none.
func (c *Chunker) Run(ctx context.Context, r io.Reader, emit func(utils.UploadChunk) error) (int, error) {
	if c.SliceSize < 1 {
		return 0, utils.ErrInvalidConfig
	}
	emitted := 0
	for {
		if err := ctx.Err(); err != nil {
			return emitted, err
		}
		buf := c.buffer()
		n, err := io.ReadFull(r, buf)
		eof := errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
		if err != nil && !eof {
			c.pool.Put(&buf)
			return emitted, err
		}
		if n == 0 {
			c.pool.Put(&buf)
			return emitted, nil
		}
		emitted++
		if err := emit(utils.UploadChunk{Seq: emitted, Data: buf[:n]}); err != nil {
			return emitted, err
		}
		if eof {
			return emitted, nil
		}
	}
}
