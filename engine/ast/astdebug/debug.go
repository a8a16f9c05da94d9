/*
Package astdebug renders document trees in GraphViz DOT format.

	dot -Tsvg -o tree.svg tree.dot

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package astdebug

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/schuko/tracing"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname   string
	NodeTmpl   *template.Template
	InlineTmpl *template.Template
	EdgeTmpl   *template.Template
	cnt        int
}

// maxNodes limits output for very large documents.
const maxNodes = 5000

// ToGraphViz creates a graphical representation of a document tree.
// It produces a DOT file format suitable as input for Graphviz, given a Writer.
func ToGraphViz(doc *ast.Document, w io.Writer, tracer tracing.Trace) error {
	if tracer == nil {
		tracer = tracing.Select("mdtree.ast")
	}
	header, err := template.New("docTree").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	funcs := template.FuncMap{
		"shortstring": shortText,
		"label":       label,
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("node").Funcs(funcs).Parse(nodeTmpl))
	gparams.InlineTmpl = template.Must(template.New("inline").Funcs(funcs).Parse(inlineTmpl))
	gparams.EdgeTmpl = template.Must(template.New("edge").Parse(edgeTmpl))
	if err = header.Execute(w, gparams); err != nil {
		return err
	}
	if _, err = nodes(doc, w, &gparams, tracer); err != nil {
		return err
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

func nodes(n ast.Node, w io.Writer, gparams *graphParamsType, tracer tracing.Trace) (string, error) {
	gparams.cnt++
	name := fmt.Sprintf("node%05d", gparams.cnt)
	if gparams.cnt > maxNodes {
		return name, nil
	}
	if err := node(&dnode{n, name}, w, gparams); err != nil {
		return name, err
	}
	for i, child := range ast.Children(n) {
		tracer.Debugf("  child[%d] of %s = %s", i, n.Kind(), child.Kind())
		childname, err := nodes(child, w, gparams, tracer)
		if err != nil {
			return name, err
		}
		if gparams.cnt > maxNodes {
			break
		}
		e := dedge{dnode{n, name}, dnode{child, childname}}
		if err := gparams.EdgeTmpl.Execute(w, e); err != nil {
			return name, err
		}
	}
	return name, nil
}

func node(d *dnode, w io.Writer, gparams *graphParamsType) error {
	if d.N.Kind().IsInline() {
		return gparams.InlineTmpl.Execute(w, d)
	}
	return gparams.NodeTmpl.Execute(w, d)
}

// Helper structs
type dnode struct {
	N    ast.Node
	Name string
}

type dedge struct {
	N1, N2 dnode
}

// ---------------------------------------------------------------------------

func shortText(n ast.Node) string {
	var txt string
	switch x := n.(type) {
	case *ast.Text:
		txt = x.Value
	case *ast.CodeSpan:
		txt = "`" + x.Value + "`"
	case *ast.HTMLInline:
		txt = x.Value
	case *ast.Link:
		txt = "→ " + x.URL
	case *ast.Image:
		txt = "img " + x.URL
	default:
		return fmt.Sprintf("%q", n.Kind().String())
	}
	if r := []rune(txt); len(r) > 16 {
		txt = string(r[:16]) + "…"
	}
	txt = strings.Replace(txt, `\`, `\\`, -1)
	txt = strings.Replace(txt, `"`, `\"`, -1)
	txt = strings.Replace(txt, "\n", `\\n`, -1)
	txt = strings.Replace(txt, "\t", `\\t`, -1)
	txt = strings.Replace(txt, " ", "␣", -1)
	return "\"" + txt + "\""
}

func label(n ast.Node) string {
	switch b := n.(type) {
	case *ast.Heading:
		return fmt.Sprintf("\"h%d %s\"", b.Level, b.Style)
	case *ast.CodeBlock:
		return fmt.Sprintf("\"code %s %s\"", b.Style, b.Lang)
	case *ast.HTMLBlock:
		return fmt.Sprintf("\"html type %d\"", b.HTMLType)
	case *ast.List:
		if b.Ordered {
			return fmt.Sprintf("\"ol %d%s\"", b.FirstNumber(), b.Marker)
		}
		return fmt.Sprintf("\"ul %s\"", b.Marker)
	case *ast.ListItem:
		if b.Checked != nil {
			if *b.Checked {
				return "\"item [x]\""
			}
			return "\"item [ ]\""
		}
		return fmt.Sprintf("\"item %s\"", b.Marker)
	case *ast.LinkReferenceDefinition:
		return fmt.Sprintf("%q", "["+b.Label+"]")
	}
	return "\"" + n.Kind().String() + "\""
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=12] ;
   node [fontname = "{{ .Fontname }}" fontsize=12] ;
   edge [fontname = "{{ .Fontname }}" fontsize=12] ;
`

const nodeTmpl = `{{ .Name }}	[ label={{ label .N }} shape=box style=filled fillcolor=lightblue3 ] ;
`

const inlineTmpl = `{{ .Name }}	[ label={{ shortstring .N }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
`

const edgeTmpl = `{{ .N1.Name }} -> {{ .N2.Name }} [weight=1] ;
`
