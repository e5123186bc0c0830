package elasticsearch

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"sync"
)

// gzipCompressor compresses bulk request bodies, reusing writers and buffers
// through sync.Pool since bulk bodies are produced at a steady rate.
type gzipCompressor struct {
	writerPool *sync.Pool
	bufferPool *sync.Pool
}

func newGzipCompressor() *gzipCompressor {
	return &gzipCompressor{
		writerPool: &sync.Pool{
			New: func() any {
				return gzip.NewWriter(nil)
			},
		},
		bufferPool: &sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}
}

// compress returns the gzip compressed body. The returned bytes are a copy;
// the intermediate buffer goes back to the pool before returning.
func (g *gzipCompressor) compress(body []byte) ([]byte, error) {
	writer := g.writerPool.Get().(*gzip.Writer)
	defer g.writerPool.Put(writer)

	buf := g.bufferPool.Get().(*bytes.Buffer)
	defer g.bufferPool.Put(buf)
	buf.Reset()
	writer.Reset(buf)

	if _, err := writer.Write(body); err != nil {
		return nil, fmt.Errorf("failed to compress request body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress request body (during close): %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
