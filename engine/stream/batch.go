package stream

import (
	"context"
	"runtime"

	"github.com/npillmayer/mdtree/core"
)

// NamedSource is an input file for batch processing.
type NamedSource struct {
	Name   string
	Source Source
}

// Batch parses several sources, one after the other, and sends their events
// on the returned channel. The events of each file are enclosed by FileStart
// and either FileComplete or FileError; an error in one file does not stop
// the batch. A final BatchComplete event tells the number of files and of
// failed files. Options are validated before any file is processed.
func Batch(ctx context.Context, files []NamedSource, opts ...Option) (<-chan Event, error) {
	if _, err := newConfig(opts); err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.Source == nil {
			return nil, core.Error(core.EINVALID, "source of file %q is nil", f.Name)
		}
	}
	ch := make(chan Event)
	go func() {
		defer close(ch)
		failed := 0
		for _, f := range files {
			if !deliver(ctx, ch, Event{Kind: FileStart, File: f.Name}) {
				return
			}
			p, _ := NewParser(opts...)
			err := run(ctx, p, f.Source, f.Name, ch)
			if ctx.Err() != nil {
				return
			}
			end := Event{Kind: FileComplete, File: f.Name}
			if err != nil {
				failed++
				end = Event{Kind: FileError, File: f.Name, Err: err}
			}
			if !deliver(ctx, ch, end) {
				return
			}
			tracer().Infof("batch: %s done, err = %v", f.Name, err)
			runtime.Gosched()
		}
		deliver(ctx, ch, Event{Kind: BatchComplete, Total: len(files), Errors: failed})
	}()
	return ch, nil
}

func deliver(ctx context.Context, ch chan<- Event, e Event) bool {
	select {
	case ch <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
