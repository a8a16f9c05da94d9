/*
Package ast defines the document tree produced by the Markdown parsers and
consumed by generators, renderers and query helpers.

The node set is closed. Block nodes implement Block, inline nodes implement
Inline; both carry a NodeKind discriminant, so consumers may dispatch with a
switch over Kind() or a type switch and know that the list of variants is
complete.

A tree owns all of its nodes. There are no parent pointers and no cycles.
After a parse the tree is treated as a value: consumers never mutate it, but
clients are free to append nodes when building documents programmatically.
Style and marker fields of hand-built nodes may be left at their zero values;
generators fill them from their configured defaults.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ast

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.ast'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.ast")
}
