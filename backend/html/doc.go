/*
Package html renders document trees as HTML.

Render walks a tree once and does not modify it. Output follows the
conventions of the CommonMark reference renderer, e.g. paragraphs of tight
list items are written without <p> tags. Task list items get a disabled
checkbox and table cells carry an align attribute.

Raw HTML is passed through unless Options.Sanitize is set, in which case it is
escaped and URLs with scripting schemes are neutralized.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package html

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.html'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.html")
}
