/*
Package lines prepares Markdown input for parsing: decoding, line ending
normalization and segmentation into line records.

Line records know their visual column, so container prefixes may be stripped
from them one after another while tab stops (every 4 columns) stay correct.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lines

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.lines'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.lines")
}
