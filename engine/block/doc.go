/*
Package block implements the block structure phase of Markdown parsing.

The parser is a dispatcher over line records. At every line it checks block
start conditions in a fixed order of priority (thematic break, ATX heading,
code fence, HTML block, blockquote, list item, indented code, table, link
reference definition) and falls back to a paragraph. Containers strip their
prefixes from their lines and recurse into the dispatcher with an incremented
depth. Beyond the maximum depth containers are kept, but their content is
dropped.

Parsing never fails. Constructs which do not match degrade to paragraph text.

Link reference definitions are collected by Prescan before block parsing
starts, so that inline content may refer to labels defined further down.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package block

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.block'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.block")
}
