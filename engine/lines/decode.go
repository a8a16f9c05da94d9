package lines

import (
	"bytes"
	"io"
	"strings"

	"github.com/npillmayer/mdtree/core"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Line endings as recorded on documents.
const (
	LF   = "\n"
	CRLF = "\r\n"
	CR   = "\r"
)

func newDecoder() transform.Transformer {
	return unicode.BOMOverride(unicode.UTF8.NewDecoder())
}

// Decode converts raw input to a string. A byte order mark selects UTF-8 or
// UTF-16 (LE/BE) and is removed; input without a BOM is taken to be UTF-8.
// Invalid UTF-8 sequences are replaced by U+FFFD.
func Decode(input []byte) (string, error) {
	out, _, err := transform.Bytes(newDecoder(), input)
	if err != nil {
		return "", core.WrapError(err, core.EDECODE, "cannot decode input")
	}
	tracer().Debugf("decoded %d bytes of input into %d bytes", len(input), len(out))
	return string(out), nil
}

// NewDecoder wraps w in a writer which decodes like Decode. Multi-byte
// sequences may be split across calls to Write; incomplete trailing bytes are
// held back until the next Write or Close.
func NewDecoder(w io.Writer) io.WriteCloser {
	return transform.NewWriter(w, newDecoder())
}

// DetectEnding returns the line ending style of the first line terminator in
// text, or LF if there is none.
func DetectEnding(text string) string {
	i := strings.IndexAny(text, "\r\n")
	if i < 0 || text[i] == '\n' {
		return LF
	}
	if i+1 < len(text) && text[i+1] == '\n' {
		return CRLF
	}
	return CR
}

// Normalize converts all line terminators (CRLF, CR, LF) to LF.
func Normalize(text string) string {
	if strings.IndexByte(text, '\r') < 0 {
		return text
	}
	var b bytes.Buffer
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\r' {
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			c = '\n'
		}
		b.WriteByte(c)
	}
	return b.String()
}
