/*
Package parameters holds the style registers which drive Markdown generation.

Registers have defaults and may be overridden either globally or within a
group. Groups nest; leaving a group restores the values which were in effect
before it was entered. The generator uses groups to switch e.g. bullet
characters for sibling lists without disturbing the user's settings.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package parameters

import (
	"strconv"
	"strings"

	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'mdtree.core'.
func tracer() tracing.Trace {
	return tracing.Select("mdtree.core")
}

// StyleParameter is a key for a style register.
type StyleParameter int

const (
	none StyleParameter = iota
	P_LINEENDING
	P_FENCECHAR
	P_FENCELENGTH
	P_EMPHASIS
	P_STRONG
	P_BULLET
	P_ORDERED
	P_RULECHAR
	P_RULELENGTH
	P_SETEXT
	P_TABLEPAD
	P_STOPPER
)

var parameterNames = [P_STOPPER]string{
	"none", "line-ending", "fence-char", "fence-length", "emphasis", "strong",
	"bullet", "ordered", "rule-char", "rule-length", "setext", "table-pad",
}

func (p StyleParameter) String() string {
	if p < 0 || p >= P_STOPPER {
		return "StyleParameter(" + strconv.Itoa(int(p)) + ")"
	}
	return parameterNames[p]
}

// ParameterGroup is a set of register overrides for one group level.
type ParameterGroup struct {
	params map[StyleParameter]interface{}
	level  int
	next   *ParameterGroup
}

// StyleRegisters is a set of registers for the Markdown generator.
type StyleRegisters struct {
	base       [P_STOPPER]interface{}
	groups     *ParameterGroup
	grouplevel int
}

// ----------------------------------------------------------------------

// NewStyleRegisters creates a register set populated with defaults.
func NewStyleRegisters() *StyleRegisters {
	regs := &StyleRegisters{}
	initParameters(&regs.base)
	return regs
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_LINEENDING] = "\n" // "\n" or "\r\n"
	p[P_FENCECHAR] = "`"   // backtick or tilde
	p[P_FENCELENGTH] = 3   // minimum fence length
	p[P_EMPHASIS] = "*"    // "*" or "_"
	p[P_STRONG] = "**"     // "**" or "__"
	p[P_BULLET] = "-"      // one of "-", "*", "+"
	p[P_ORDERED] = "."     // "." or ")"
	p[P_RULECHAR] = "*"    // one of "-", "*", "_"
	p[P_RULELENGTH] = 3    // at least 3
	p[P_SETEXT] = false    // setext headings for hand-built level 1 and 2 headings
	p[P_TABLEPAD] = true   // pad table cells to column width
}

// Begingroup opens a new group level. Values set with Set within the group are
// dropped at the corresponding Endgroup.
func (regs *StyleRegisters) Begingroup() {
	regs.grouplevel++
}

// Endgroup closes the innermost group level.
func (regs *StyleRegisters) Endgroup() {
	if regs.grouplevel > 0 {
		if regs.groups != nil && regs.groups.level == regs.grouplevel {
			regs.groups = regs.groups.next
		}
		regs.grouplevel--
	}
}

// Set validates a value and stores it for key, either in the base set or in
// the current group.
func (regs *StyleRegisters) Set(key StyleParameter, value interface{}) error {
	if err := validate(key, value); err != nil {
		tracer().Errorf("style register %s rejects %v", key, value)
		return err
	}
	regs.push(key, value)
	return nil
}

func (regs *StyleRegisters) push(key StyleParameter, value interface{}) {
	if regs.grouplevel == 0 {
		regs.base[key] = value
		return
	}
	g := regs.groups
	if g == nil || g.level < regs.grouplevel {
		g = &ParameterGroup{
			params: make(map[StyleParameter]interface{}),
			level:  regs.grouplevel,
			next:   regs.groups,
		}
		regs.groups = g
	}
	g.params[key] = value
}

// Get returns the value in effect for key.
func (regs *StyleRegisters) Get(key StyleParameter) interface{} {
	if key <= 0 || key >= P_STOPPER {
		panic("parameter key outside range of style parameters")
	}
	var value interface{}
	for g := regs.groups; g != nil; g = g.next {
		if value = g.params[key]; value != nil {
			break
		}
	}
	if value == nil {
		value = regs.base[key]
	}
	return value
}

// S returns a string register.
func (regs *StyleRegisters) S(key StyleParameter) string {
	return regs.Get(key).(string)
}

// N returns an integer register.
func (regs *StyleRegisters) N(key StyleParameter) int {
	return regs.Get(key).(int)
}

// B returns a boolean register.
func (regs *StyleRegisters) B(key StyleParameter) bool {
	return regs.Get(key).(bool)
}

func validate(key StyleParameter, value interface{}) error {
	oneOf := func(allowed ...string) error {
		s, ok := value.(string)
		if !ok {
			return core.Error(core.EINVALID, "style %s expects a string, got %T", key, value)
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return core.Error(core.EINVALID, "style %s must be one of %q, is %q", key, allowed, s)
	}
	atLeast := func(min int) error {
		n, ok := value.(int)
		if !ok {
			return core.Error(core.EINVALID, "style %s expects an integer, got %T", key, value)
		}
		if n < min {
			return core.Error(core.EINVALID, "style %s must be at least %d, is %d", key, min, n)
		}
		return nil
	}
	switch key {
	case P_LINEENDING:
		return oneOf("\n", "\r\n")
	case P_FENCECHAR:
		return oneOf("`", "~")
	case P_EMPHASIS:
		return oneOf("*", "_")
	case P_STRONG:
		return oneOf("**", "__")
	case P_BULLET:
		return oneOf("-", "*", "+")
	case P_ORDERED:
		return oneOf(".", ")")
	case P_RULECHAR:
		return oneOf("-", "*", "_")
	case P_FENCELENGTH, P_RULELENGTH:
		return atLeast(3)
	case P_SETEXT, P_TABLEPAD:
		if _, ok := value.(bool); !ok {
			return core.Error(core.EINVALID, "style %s expects a boolean, got %T", key, value)
		}
		return nil
	}
	return core.Error(core.EINVALID, "unknown style parameter %d", key)
}

// FromConfig creates style registers and overrides defaults with values found
// in a configuration. Keys are of the form "markdown.<parameter-name>", e.g.
// "markdown.bullet" or "markdown.fence-length". A line ending may be given as
// "lf" or "crlf".
func FromConfig(conf schuko.Configuration) (*StyleRegisters, error) {
	regs := NewStyleRegisters()
	if conf == nil {
		return regs, nil
	}
	for key := P_LINEENDING; key < P_STOPPER; key++ {
		ckey := "markdown." + key.String()
		if !conf.IsSet(ckey) {
			continue
		}
		var value interface{}
		switch regs.base[key].(type) {
		case int:
			n, err := strconv.Atoi(strings.TrimSpace(conf.GetString(ckey)))
			if err != nil {
				return nil, core.WrapError(err, core.EINVALID, "configuration key %s", ckey)
			}
			value = n
		case bool:
			value = conf.GetBool(ckey)
		default:
			value = conf.GetString(ckey)
			if key == P_LINEENDING {
				switch strings.ToLower(value.(string)) {
				case "lf":
					value = "\n"
				case "crlf":
					value = "\r\n"
				}
			}
		}
		if err := regs.Set(key, value); err != nil {
			return nil, err
		}
	}
	return regs, nil
}
