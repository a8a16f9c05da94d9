/*
Package markdown is the entry point for parsing Markdown documents.

Parse decodes its input (UTF-8, or UTF-16 with a byte order mark), normalizes
line endings, collects link reference definitions and parses the block
structure and inline content into a document tree:

	doc, err := markdown.Parse(src, markdown.WithPositions())

Generate is the inverse operation and creates Markdown text from a tree.
Parsing generated text yields a tree equal to the one generated from, apart
from source positions.

Options are validated before any work is done. Content never causes an error:
constructs which do not match degrade to paragraph text.

For input arriving in chunks, see package engine/stream.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package markdown

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.markdown'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.markdown")
}
