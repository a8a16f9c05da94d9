package stream

import (
	"bytes"
	"io"

	humanize "github.com/dustin/go-humanize"
	"github.com/npillmayer/cords"
	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/block"
	"github.com/npillmayer/mdtree/engine/lines"
	"github.com/npillmayer/schuko"
)

// Defaults for streaming sessions.
const (
	DefaultMaxBufferSize = 8 << 20 // bytes held back at most
	DefaultFlushLines    = 512     // buffered lines which force an extraction attempt
)

// Option configures a streaming parser.
type Option func(*config) error

type config struct {
	maxBuffer  int
	flushLines int
	block      block.Config
}

// WithMaxBufferSize limits the number of bytes a parser holds back.
func WithMaxBufferSize(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return core.Error(core.EINVALID, "maximum buffer size must be positive, is %d", n)
		}
		c.maxBuffer = n
		return nil
	}
}

// WithFlushLines sets the number of buffered lines above which the parser
// tries to extract blocks even without seeing a blank line.
func WithFlushLines(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return core.Error(core.EINVALID, "flush lines must be positive, is %d", n)
		}
		c.flushLines = n
		return nil
	}
}

// WithPositions attaches source positions to emitted blocks.
func WithPositions() Option {
	return func(c *config) error {
		c.block.Positions = true
		return nil
	}
}

// WithMaxNesting sets the maximum depth of nested containers.
func WithMaxNesting(depth int) Option {
	return func(c *config) error {
		if depth < 1 {
			return core.Error(core.EINVALID, "maximum nesting must be positive, is %d", depth)
		}
		c.block.MaxNesting = depth
		return nil
	}
}

// WithConfig reads "stream.max-buffer" (a size like "8 MiB"),
// "stream.flush-lines" and "markdown.positions" from a configuration.
func WithConfig(conf schuko.Configuration) Option {
	return func(c *config) error {
		if conf == nil {
			return nil
		}
		if conf.IsSet("stream.max-buffer") {
			size, err := humanize.ParseBytes(conf.GetString("stream.max-buffer"))
			if err != nil {
				return core.WrapError(err, core.EINVALID, "stream.max-buffer")
			}
			if err := WithMaxBufferSize(int(size))(c); err != nil {
				return err
			}
		}
		if conf.IsSet("stream.flush-lines") {
			if err := WithFlushLines(conf.GetInt("stream.flush-lines"))(c); err != nil {
				return err
			}
		}
		if conf.IsSet("markdown.positions") {
			c.block.Positions = conf.GetBool("markdown.positions")
		}
		return nil
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		maxBuffer:  DefaultMaxBufferSize,
		flushLines: DefaultFlushLines,
		block:      block.Config{MaxNesting: block.DefaultMaxNesting},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			tracer().Errorf("invalid option: %v", err)
			return nil, err
		}
	}
	return c, nil
}

// --- Parser ----------------------------------------------------------------

// Parser is an incremental Markdown parser. A Parser is not safe for
// concurrent use.
type Parser struct {
	conf    *config
	decoded bytes.Buffer   // decoder output not yet scanned
	dec     io.WriteCloser // decoder writing to decoded
	partial *cords.Builder
	plen    int  // bytes in partial
	crSeen  bool // last byte scanned was a CR
	ending  string
	lines   []lines.Line // buffered lines
	size    int          // bytes in buffered lines
	lineNo  int          // number of the next line
	offset  int          // offset of the next line in normalized input
	fence   byte         // fence character of an open top-level fence
	fenceN  int
	refs    ast.References
	retry   int // buffered lines needed before the next extraction attempt
	tries   int // extraction attempts, for tracing
	done    bool
}

// NewParser creates a streaming parser. Options are validated here.
func NewParser(opts ...Option) (*Parser, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		conf:    c,
		partial: cords.NewBuilder(),
		lineNo:  1,
		refs:    ast.References{},
	}
	p.dec = lines.NewDecoder(&p.decoded)
	return p, nil
}

// Push feeds a chunk of input to the parser and returns the events which
// became available. After an error event, or after Finish, Push returns nil.
func (p *Parser) Push(chunk []byte) []Event {
	if p.done {
		return nil
	}
	if _, err := p.dec.Write(chunk); err != nil {
		return p.fail(core.WrapError(err, core.EDECODE, "cannot decode chunk"))
	}
	events := p.scan(nil)
	if p.size+p.plen > p.conf.maxBuffer {
		return append(events, p.fail(core.Error(core.EOVERFLOW,
			"streaming buffer exceeds %s", humanize.IBytes(uint64(p.conf.maxBuffer))))...)
	}
	return events
}

// Finish signals the end of input. It returns events for all remaining
// blocks, followed by a Complete event.
func (p *Parser) Finish() []Event {
	if p.done {
		return nil
	}
	if err := p.dec.Close(); err != nil {
		return p.fail(core.WrapError(err, core.EDECODE, "cannot decode end of input"))
	}
	events := p.scan(nil)
	if p.crSeen {
		p.noteEnding(lines.CR)
	}
	if p.plen > 0 {
		p.appendLine(p.takePartial())
	}
	blocks, _ := block.ParseSpans(p.prescanned(), p.refs, p.conf.block)
	for _, b := range blocks {
		events = append(events, Event{Kind: BlockEvent, Block: b})
	}
	p.lines, p.size = nil, 0
	if p.ending == "" {
		p.ending = lines.LF
	}
	p.done = true
	doc := &ast.Document{References: p.refs, LineEnding: p.ending}
	tracer().Infof("stream complete after %d lines, %d references", p.lineNo-1, len(p.refs))
	return append(events, Event{Kind: CompleteEvent, Document: doc})
}

func (p *Parser) fail(err error) []Event {
	tracer().Errorf("streaming aborted: %v", err)
	p.done = true
	p.lines, p.partial = nil, nil
	return []Event{{Kind: ErrorEvent, Err: err}}
}

// scan splits decoded text into lines. The part after the last terminator is
// kept as a partial line.
func (p *Parser) scan(events []Event) []Event {
	data := p.decoded.String()
	p.decoded.Reset()
	start := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if p.crSeen {
			p.crSeen = false
			if c == '\n' {
				p.noteEnding(lines.CRLF)
				start = i + 1
				continue
			}
			p.noteEnding(lines.CR)
		}
		if c != '\n' && c != '\r' {
			continue
		}
		if c == '\n' {
			p.noteEnding(lines.LF)
		} else {
			p.crSeen = true
		}
		text := data[start:i]
		if p.plen > 0 {
			p.addPartial(text)
			text = p.takePartial()
		}
		start = i + 1
		if p.appendLine(text) {
			events = p.extract(events)
		}
	}
	if start < len(data) {
		p.addPartial(data[start:])
	}
	return events
}

func (p *Parser) noteEnding(e string) {
	if p.ending == "" {
		p.ending = e
		tracer().Debugf("line ending is %q", e)
	}
}

func (p *Parser) addPartial(s string) {
	if s == "" {
		return
	}
	p.partial.Append(fragment(s))
	p.plen += len(s)
}

func (p *Parser) takePartial() string {
	text := p.partial.Cord().String()
	p.partial = cords.NewBuilder()
	p.plen = 0
	return text
}

// appendLine buffers a complete line and tells if an extraction should be
// attempted.
func (p *Parser) appendLine(text string) bool {
	l := lines.Split(text+"\n", p.lineNo, p.offset)[0]
	p.lines = append(p.lines, l)
	p.size += len(text)
	p.lineNo++
	p.offset += len(text) + 1
	if p.fence != 0 {
		if block.FenceClose(l, p.fence, p.fenceN) {
			p.fence = 0
		}
	} else if c, n, ok := block.FenceOpen(l); ok {
		p.fence, p.fenceN = c, n
	}
	if len(p.lines) < p.retry {
		return false
	}
	if len(p.lines)%p.conf.flushLines == 0 {
		tracer().Debugf("%d lines buffered, forcing an extraction attempt", len(p.lines))
		return true
	}
	return l.Blank && p.fence == 0
}

func (p *Parser) prescanned() []lines.Line {
	if n := block.Prescan(p.lines, p.refs); n > 0 {
		tracer().Debugf("%d new link reference definitions", n)
	}
	return p.lines
}

// extract parses the buffered lines and emits every block which cannot be
// changed by further lines. Lines of emitted blocks leave the buffer. An
// attempt which emits nothing defers further attempts until the buffer has
// doubled.
func (p *Parser) extract(events []Event) []Event {
	p.tries++
	blocks, spans := block.ParseSpans(p.prescanned(), p.refs, p.conf.block)
	keep := len(blocks)
	if keep > 0 && spans[keep-1].Open {
		keep--
	}
	for _, b := range blocks[:keep] {
		events = append(events, Event{Kind: BlockEvent, Block: b})
	}
	var drop int
	switch {
	case keep == len(blocks):
		drop = len(p.lines)
	case keep > 0:
		drop = spans[keep-1].End
	}
	if drop == 0 {
		p.retry = 2 * len(p.lines)
		tracer().Debugf("nothing to emit, next attempt at %d buffered lines", p.retry)
		return events
	}
	p.retry = 0
	for _, l := range p.lines[:drop] {
		p.size -= len(l.Text)
	}
	p.lines = append([]lines.Line(nil), p.lines[drop:]...)
	tracer().Debugf("emitted %d blocks, %d lines remain buffered after %d attempts", keep, len(p.lines), p.tries)
	return events
}

// --- Partial lines ---------------------------------------------------------

// fragment is a leaf of the partial-line cord.
type fragment string

func (f fragment) Weight() uint64 {
	return uint64(len(f))
}

func (f fragment) String() string {
	return string(f)
}

func (f fragment) Split(i uint64) (cords.Leaf, cords.Leaf) {
	return f[:i], f[i:]
}

func (f fragment) Substring(i, j uint64) []byte {
	return []byte(f[i:j])
}

var _ cords.Leaf = fragment("")
