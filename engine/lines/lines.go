package lines

import (
	"strings"
	"unicode/utf8"
)

// TabStop is the width of a tab stop.
const TabStop = 4

// Line is a line record. After container prefixes have been stripped, Text
// holds what remains of the line and Column tells the visual column where Text
// starts in the original line.
type Line struct {
	Number int    // 1-based line number
	Offset int    // byte offset of Text in the normalized input
	Column int    // 0-based visual column of Text
	Text   string // line content without terminator
	Indent int    // width of leading whitespace, tabs expanded
	Blank  bool   // line is empty or whitespace only
}

func newLine(number, offset, column int, text string) Line {
	l := Line{Number: number, Offset: offset, Column: column, Text: text}
	l.measure()
	return l
}

func (l *Line) measure() {
	col := l.Column
	i := 0
	for ; i < len(l.Text); i++ {
		if l.Text[i] == ' ' {
			col++
		} else if l.Text[i] == '\t' {
			col += TabStop - col%TabStop
		} else {
			break
		}
	}
	l.Indent = col - l.Column
	l.Blank = i == len(l.Text)
}

// Split segments LF-normalized text into lines. firstLine is the number of the
// first line and offset the byte offset of text within a larger input. A final
// line terminator does not start another line.
func Split(text string, firstLine, offset int) []Line {
	if text == "" {
		return nil
	}
	ls := make([]Line, 0, strings.Count(text, "\n")+1)
	n := firstLine
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			ls = append(ls, newLine(n, offset, 0, text))
			break
		}
		ls = append(ls, newLine(n, offset, 0, text[:i]))
		text = text[i+1:]
		offset += i + 1
		n++
	}
	tracer().Debugf("split input into %d lines", len(ls))
	return ls
}

// Rest returns the text after leading whitespace.
func (l Line) Rest() string {
	return strings.TrimLeft(l.Text, " \t")
}

// Width returns the visual width of the line's text.
func (l Line) Width() int {
	col := l.Column
	for _, r := range l.Text {
		if r == '\t' {
			col += TabStop - col%TabStop
		} else {
			col++
		}
	}
	return col - l.Column
}

// Strip removes up to n columns of leading whitespace. A tab which spans the
// cut is replaced by the spaces remaining after the cut.
func (l Line) Strip(n int) Line {
	removed, i := 0, 0
	for i < len(l.Text) && removed < n {
		c := l.Text[i]
		if c == ' ' {
			removed++
			i++
			continue
		}
		if c != '\t' {
			break
		}
		w := TabStop - (l.Column+removed)%TabStop
		if removed+w > n {
			keep := removed + w - n
			text := strings.Repeat(" ", keep) + l.Text[i+1:]
			return newLine(l.Number, l.Offset+i, l.Column+n, text)
		}
		removed += w
		i++
	}
	return newLine(l.Number, l.Offset+i, l.Column+removed, l.Text[i:])
}

// StripAll removes all leading whitespace.
func (l Line) StripAll() Line {
	return l.Strip(l.Indent)
}

// Advance removes n bytes from the start of the line, e.g. a container marker.
func (l Line) Advance(n int) Line {
	if n > len(l.Text) {
		n = len(l.Text)
	}
	col := l.Column
	for _, r := range l.Text[:n] {
		if r == '\t' {
			col += TabStop - col%TabStop
		} else {
			col++
		}
	}
	return newLine(l.Number, l.Offset+n, col, l.Text[n:])
}

// Expanded returns the line's text with leading tabs expanded to spaces,
// relative to the line's column.
func (l Line) Expanded() string {
	if strings.IndexByte(l.Text, '\t') < 0 {
		return l.Text
	}
	return strings.Repeat(" ", l.Indent) + l.Rest()
}

// EndColumn returns the 1-based column of the line's last character.
func (l Line) EndColumn() int {
	return l.Column + utf8.RuneCountInString(l.Text)
}

// Dedent strips n columns of indentation from every line.
func Dedent(ls []Line, n int) []Line {
	out := make([]Line, len(ls))
	for i, l := range ls {
		out[i] = l.Strip(n)
	}
	return out
}

// Join concatenates the texts of lines, separated by LF.
func Join(ls []Line) string {
	var b strings.Builder
	for i, l := range ls {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.Text)
	}
	return b.String()
}
