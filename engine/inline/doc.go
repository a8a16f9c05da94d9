/*
Package inline parses the inline content of leaf blocks: code spans, escapes,
entities, autolinks, raw HTML, emphasis and links.

Parsing is done in a single scan which produces a list of inline nodes plus a
stack of delimiter runs and a stack of open brackets. Emphasis is resolved
from the delimiter stack whenever a link has been closed and once more at the
end of input, following the CommonMark algorithm. Neither resolution step
recurses, and the bracket stack has a configurable maximum depth; brackets
beyond that depth stay literal text.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package inline

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.inline'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.inline")
}
