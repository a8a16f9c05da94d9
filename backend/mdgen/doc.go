/*
Package mdgen generates Markdown text from a document tree.

Output style is controlled by style registers (package core/parameters).
Whenever a node records how it has been written in source (heading style,
code fence, list markers, emphasis markers), the node's style is preferred over
the registers, so that parsing generated output reproduces the tree.

Generation works bottom-up on lines: every block renders to a list of lines,
and containers prefix the lines of their children. List item continuation lines
are indented by the marker's width plus one, block quotes prefix every line
with "> ", using a bare ">" for blank lines.

Text is escaped such that it is not mistaken for markup when re-parsed.
Column widths of tables are measured in terminal cells (UAX #11), so tables
containing East Asian wide characters line up.

The generator never reads source positions.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package mdgen

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.gen'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.gen")
}
