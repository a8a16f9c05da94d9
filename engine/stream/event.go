package stream

import (
	"fmt"

	"github.com/npillmayer/mdtree/engine/ast"
)

// EventKind tells the type of an event.
type EventKind int8

// Kinds of events. File and batch events are sent by Batch only.
const (
	BlockEvent    EventKind = iota // a top-level block is final
	CompleteEvent                  // input is exhausted, carries a document shell
	ErrorEvent                     // terminal error
	FileStart
	FileComplete
	FileError
	BatchComplete
)

func (k EventKind) String() string {
	switch k {
	case BlockEvent:
		return "Block"
	case CompleteEvent:
		return "Complete"
	case ErrorEvent:
		return "Error"
	case FileStart:
		return "FileStart"
	case FileComplete:
		return "FileComplete"
	case FileError:
		return "FileError"
	case BatchComplete:
		return "BatchComplete"
	}
	return fmt.Sprintf("EventKind(%d)", k)
}

// Event is sent by a streaming parser.
//
// A Complete event carries a document without children, holding the
// references collected during the session and the detected line ending.
type Event struct {
	Kind     EventKind
	Block    ast.Block     // for BlockEvent
	Document *ast.Document // for CompleteEvent
	Err      error         // for ErrorEvent and FileError
	File     string        // name of the source, set in batch mode
	Total    int           // number of files, for BatchComplete
	Errors   int           // number of failed files, for BatchComplete
}

func (e Event) String() string {
	switch e.Kind {
	case BlockEvent:
		return fmt.Sprintf("Block(%s)", e.Block.Kind())
	case ErrorEvent, FileError:
		return fmt.Sprintf("%s(%v)", e.Kind, e.Err)
	case BatchComplete:
		return fmt.Sprintf("BatchComplete(%d/%d)", e.Errors, e.Total)
	}
	return e.Kind.String()
}
