/*
Package stream parses Markdown input arriving in chunks.

A Parser receives chunks of raw bytes with Push. Chunks may split lines,
line terminators (CR|LF) and multi-byte characters anywhere. Whenever a block
can no longer be changed by further input, it is emitted as an event:

	p, _ := stream.NewParser()
	for _, chunk := range chunks {
		for _, e := range p.Push(chunk) {
			...
		}
	}
	events := p.Finish()   // remaining blocks, then a Complete event

Lines are buffered until a blank line outside of a fenced code block suggests
a block boundary. The buffered lines are then parsed by the regular block
parser, and every top-level block except a still-open last one is emitted.
Emitted blocks are therefore identical to the blocks of a buffered parse, as
long as inline content does not refer to link reference definitions which
appear later in the input.

The number of bytes held back is limited (see WithMaxBufferSize). Exceeding the
limit ends the session with an error event.

Stream and Batch offer a pull interface on top of Parser, delivering events
over a channel.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package stream

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.stream'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.stream")
}
