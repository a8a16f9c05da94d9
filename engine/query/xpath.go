package query

import (
	"fmt"

	"github.com/antchfx/xpath"
	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/engine/ast"
)

func compile(root ast.Node, expr string) (*xpath.Expr, error) {
	if d, ok := root.(*ast.Document); root == nil || ok && d == nil {
		return nil, core.Error(core.EINVALID, "cannot query an empty tree")
	}
	x, err := xpath.Compile(expr)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "invalid XPath expression %q", expr)
	}
	return x, nil
}

// Select returns the nodes matching an XPath expression, in document order.
// For selected attributes, the node owning the attribute is returned.
func Select(root ast.Node, expr string) (nodes []ast.Node, err error) {
	x, err := compile(root, expr)
	if err != nil {
		return nil, err
	}
	defer recoverQuery(expr, &err)
	it := x.Select(NewNavigator(root))
	for it.MoveNext() {
		n := it.Current().(*NodeNavigator).Current()
		if len(nodes) == 0 || nodes[len(nodes)-1] != n {
			nodes = append(nodes, n)
		}
	}
	tracer().Debugf("%q selected %d nodes", expr, len(nodes))
	return nodes, nil
}

// SelectValues returns the string values of the nodes matching an XPath
// expression. The value of an element is its text content.
func SelectValues(root ast.Node, expr string) (values []string, err error) {
	x, err := compile(root, expr)
	if err != nil {
		return nil, err
	}
	defer recoverQuery(expr, &err)
	it := x.Select(NewNavigator(root))
	for it.MoveNext() {
		values = append(values, it.Current().Value())
	}
	return values, nil
}

// Evaluate evaluates an XPath expression. The result is a float64, a string,
// a bool or, for node-set expressions, a []ast.Node.
func Evaluate(root ast.Node, expr string) (result interface{}, err error) {
	x, err := compile(root, expr)
	if err != nil {
		return nil, err
	}
	defer recoverQuery(expr, &err)
	switch v := x.Evaluate(NewNavigator(root)).(type) {
	case *xpath.NodeIterator:
		var nodes []ast.Node
		for v.MoveNext() {
			nodes = append(nodes, v.Current().(*NodeNavigator).Current())
		}
		return nodes, nil
	default:
		return v, nil
	}
}

// recoverQuery turns a panic during evaluation into an error. The XPath
// package panics on some type errors, e.g. applying sum() to a string.
func recoverQuery(expr string, err *error) {
	if r := recover(); r != nil {
		*err = core.Error(core.EINVALID, "cannot evaluate %q: %s", expr, fmt.Sprint(r))
	}
}
