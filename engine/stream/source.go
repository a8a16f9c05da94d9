package stream

import (
	"context"
	"errors"
	"io"
	"runtime"

	"github.com/npillmayer/mdtree/core"
)

// Source delivers chunks of input. Next returns io.EOF after the last chunk.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// ReaderSource reads chunks of at most size bytes from r.
func ReaderSource(r io.Reader, size int) Source {
	if size < 1 {
		size = 4096
	}
	return &readerSource{r: r, buf: make([]byte, size)}
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

func (rs *readerSource) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := rs.r.Read(rs.buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, rs.buf[:n])
			return chunk, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// ChunkSource delivers the given chunks one by one.
func ChunkSource(chunks ...string) Source {
	return &chunkSource{chunks: chunks}
}

type chunkSource struct {
	chunks []string
}

func (cs *chunkSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(cs.chunks) == 0 {
		return nil, io.EOF
	}
	chunk := cs.chunks[0]
	cs.chunks = cs.chunks[1:]
	return []byte(chunk), nil
}

// Stream parses the input of src in a separate goroutine and sends events on
// the returned channel. The channel is closed after a Complete or an Error
// event, or when ctx is cancelled. Readers which stop receiving early must
// cancel ctx.
func Stream(ctx context.Context, src Source, opts ...Option) (<-chan Event, error) {
	p, err := NewParser(opts...)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, core.Error(core.EINVALID, "stream source must not be nil")
	}
	ch := make(chan Event)
	go func() {
		defer close(ch)
		if err := run(ctx, p, src, "", ch); err != nil {
			tracer().Infof("stream ended: %v", err)
		}
	}()
	return ch, nil
}

// run drives a parser with chunks from src and forwards its events. It returns
// the error which ended the session, or ctx's error if ctx has been cancelled.
func run(ctx context.Context, p *Parser, src Source, name string, ch chan<- Event) error {
	send := func(events []Event) error {
		var failure error
		for _, e := range events {
			e.File = name
			select {
			case ch <- e:
			case <-ctx.Done():
				return ctx.Err()
			}
			if e.Kind == ErrorEvent {
				failure = e.Err
			}
		}
		return failure
	}
	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return send(p.fail(core.WrapError(err, core.EMISSING, "cannot read input")))
		}
		if err := send(p.Push(chunk)); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return send(p.Finish())
}
