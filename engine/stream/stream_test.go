package stream

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/block"
	"github.com/npillmayer/mdtree/engine/lines"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corpus = "# Title\n" +
	"\n" +
	"[ref]: /url \"T\"\n" +
	"\n" +
	"Some *text* with [ref] and ü日本.\n" +
	"continued line\n" +
	"\n" +
	"```go\n" +
	"code\n" +
	"\n" +
	"more code\n" +
	"```\n" +
	"\n" +
	"- a\n" +
	"\n" +
	"- b\n" +
	"  nested para\n" +
	"\n" +
	"> quote\n" +
	"> more\n" +
	"\n" +
	"| x | y |\n" +
	"|---|---|\n" +
	"| 1 | 2 |\n" +
	"\n" +
	"    indented\n" +
	"\n" +
	"    code\n" +
	"\n" +
	"<div>\n" +
	"html\n" +
	"</div>\n" +
	"\n" +
	"Final paragraph"

// buffered parses text in one go.
func buffered(t *testing.T, text string, cfg block.Config) []ast.Block {
	t.Helper()
	ls := lines.Split(lines.Normalize(text), 1, 0)
	refs := ast.References{}
	block.Prescan(ls, refs)
	return block.Parse(ls, refs, cfg)
}

func chunked(text string, size int) [][]byte {
	var chunks [][]byte
	for len(text) > size {
		chunks = append(chunks, []byte(text[:size]))
		text = text[size:]
	}
	return append(chunks, []byte(text))
}

// collect pushes chunks to a new parser and returns the emitted blocks and the
// final event.
func collect(t *testing.T, chunks [][]byte, opts ...Option) ([]ast.Block, Event) {
	t.Helper()
	p, err := NewParser(opts...)
	require.NoError(t, err)
	var events []Event
	for _, c := range chunks {
		events = append(events, p.Push(c)...)
	}
	events = append(events, p.Finish()...)
	require.NotEmpty(t, events)
	var blocks []ast.Block
	for _, e := range events[:len(events)-1] {
		require.Equal(t, BlockEvent, e.Kind, "unexpected event %v", e)
		blocks = append(blocks, e.Block)
	}
	return blocks, events[len(events)-1]
}

func TestChunkedHeading(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	p, err := NewParser()
	require.NoError(t, err)
	assert.Empty(t, p.Push([]byte("# Hea")))
	events := p.Push([]byte("ding\n\nParagraph"))
	require.Len(t, events, 1)
	assert.Equal(t, BlockEvent, events[0].Kind)
	assert.Equal(t, &ast.Heading{Level: 1, Style: ast.HeadingATX,
		Children: []ast.Inline{&ast.Text{Value: "Heading"}}}, events[0].Block)
	events = p.Finish()
	require.Len(t, events, 2)
	assert.Equal(t, &ast.Paragraph{Children: []ast.Inline{&ast.Text{Value: "Paragraph"}}}, events[0].Block)
	assert.Equal(t, CompleteEvent, events[1].Kind)
	assert.Equal(t, lines.LF, events[1].Document.LineEnding)
	assert.Nil(t, p.Push([]byte("more")), "session is finished")
	assert.Nil(t, p.Finish())
}

func TestEquivalence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	cfg := block.Config{Positions: true}
	expected := buffered(t, corpus, cfg)
	require.Len(t, expected, 10)
	for size := 1; size <= len(corpus); size++ {
		blocks, last := collect(t, chunked(corpus, size), WithPositions())
		require.Equal(t, expected, blocks, "chunk size %d", size)
		require.Equal(t, CompleteEvent, last.Kind)
		assert.Contains(t, last.Document.References, "ref")
	}
	crlf := strings.ReplaceAll(corpus, "\n", "\r\n")
	for _, size := range []int{1, 2, 3, 7, 64, len(crlf)} {
		blocks, last := collect(t, chunked(crlf, size), WithPositions())
		require.Equal(t, expected, blocks, "CRLF, chunk size %d", size)
		assert.Equal(t, lines.CRLF, last.Document.LineEnding)
	}
}

func TestSmallFlushLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	expected := buffered(t, corpus, block.Config{})
	blocks, _ := collect(t, chunked(corpus, 5), WithFlushLines(1))
	assert.Equal(t, expected, blocks)
	//
	p, err := NewParser(WithFlushLines(2))
	require.NoError(t, err)
	events := p.Push([]byte("# One\n# Two\n# Three\n"))
	assert.Len(t, events, 2, "extraction without blank lines")
}

func TestLongOpenBlock(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	text := strings.Repeat("- item\n\n", 8000)
	expected := buffered(t, text, block.Config{})
	require.Len(t, expected, 1)
	p, err := NewParser()
	require.NoError(t, err)
	start := time.Now()
	var events []Event
	for _, c := range chunked(text, 4096) {
		events = append(events, p.Push(c)...)
	}
	assert.Empty(t, events, "a loose list stays open until the end")
	assert.Less(t, p.tries, 32, "attempts on an open block grow logarithmically")
	events = p.Finish()
	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, events, 2)
	assert.Equal(t, expected[0], events[0].Block)
	//
	blocks, _ := collect(t, chunked(strings.Repeat("- a\n\n", 300)+"# End\n\npara", 13))
	assert.Equal(t, buffered(t, strings.Repeat("- a\n\n", 300)+"# End\n\npara", block.Config{}), blocks)
}

func TestLineEndings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	para := &ast.Paragraph{Children: []ast.Inline{
		&ast.Text{Value: "a"}, &ast.SoftBreak{}, &ast.Text{Value: "b"}}}
	blocks, last := collect(t, [][]byte{[]byte("a\r"), []byte("\nb\r"), []byte("\n")})
	assert.Equal(t, []ast.Block{para}, blocks)
	assert.Equal(t, lines.CRLF, last.Document.LineEnding)
	//
	blocks, last = collect(t, [][]byte{[]byte("a\r"), []byte("b\r")})
	assert.Equal(t, []ast.Block{para}, blocks)
	assert.Equal(t, lines.CR, last.Document.LineEnding)
	//
	_, last = collect(t, [][]byte{[]byte("x\r")})
	assert.Equal(t, lines.CR, last.Document.LineEnding, "CR at end of input")
	//
	blocks, last = collect(t, nil)
	assert.Empty(t, blocks)
	assert.Equal(t, CompleteEvent, last.Kind)
}

func TestLongLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	word := strings.Repeat("x", 10)
	chunks := [][]byte{[]byte(word), []byte(word), []byte(word), []byte(word), []byte("\n")}
	blocks, _ := collect(t, chunks, WithMaxBufferSize(50))
	require.Len(t, blocks, 1)
	assert.Equal(t, []ast.Inline{&ast.Text{Value: strings.Repeat(word, 4)}}, blocks[0].(*ast.Paragraph).Children)
	//
	p, err := NewParser(WithMaxBufferSize(50))
	require.NoError(t, err)
	events := p.Push([]byte(strings.Repeat("x", 100)))
	require.Len(t, events, 1)
	assert.Equal(t, ErrorEvent, events[0].Kind)
	assert.Equal(t, core.EOVERFLOW, core.Code(events[0].Err))
	assert.Nil(t, p.Push([]byte("y")))
	assert.Nil(t, p.Finish(), "no events after a terminal error")
}

func TestOptions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	for _, opt := range []Option{WithMaxBufferSize(0), WithFlushLines(-1), WithMaxNesting(0)} {
		_, err := NewParser(opt)
		assert.Equal(t, core.EINVALID, core.Code(err))
	}
	_, err := Stream(context.Background(), nil)
	assert.Equal(t, core.EINVALID, core.Code(err))
	//
	conf := testconfig.Conf{"stream.max-buffer": "1 KiB", "stream.flush-lines": "3"}
	p, err := NewParser(WithConfig(conf))
	require.NoError(t, err)
	assert.Equal(t, 1024, p.conf.maxBuffer)
	assert.Equal(t, 3, p.conf.flushLines)
	_, err = NewParser(WithConfig(testconfig.Conf{"stream.max-buffer": "lots"}))
	assert.Equal(t, core.EINVALID, core.Code(err))
}

func TestStream(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	ch, err := Stream(context.Background(), ReaderSource(strings.NewReader(corpus), 7))
	require.NoError(t, err)
	var blocks []ast.Block
	var kinds []EventKind
	for e := range ch {
		kinds = append(kinds, e.Kind)
		if e.Kind == BlockEvent {
			blocks = append(blocks, e.Block)
		}
	}
	assert.Equal(t, buffered(t, corpus, block.Config{}), blocks)
	assert.Equal(t, CompleteEvent, kinds[len(kinds)-1])
}

func TestStreamCancel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := Stream(ctx, ChunkSource("a\n\n", "b\n\n", "c\n\n", "d"))
	require.NoError(t, err)
	e := <-ch
	assert.Equal(t, BlockEvent, e.Kind)
	cancel()
	for range ch {
	}
}

func TestBatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "mdtree.stream")
	defer teardown()
	//
	files := []NamedSource{
		{Name: "a.md", Source: ChunkSource("# A\n\n", "text")},
		{Name: "b.md", Source: ChunkSource(strings.Repeat("y", 100))},
	}
	ch, err := Batch(context.Background(), files, WithMaxBufferSize(50))
	require.NoError(t, err)
	var got []string
	var last Event
	for e := range ch {
		got = append(got, e.File+":"+e.Kind.String())
		last = e
	}
	assert.Equal(t, []string{
		"a.md:FileStart", "a.md:Block", "a.md:Block", "a.md:Complete", "a.md:FileComplete",
		"b.md:FileStart", "b.md:Error", "b.md:FileError",
		":BatchComplete",
	}, got)
	assert.Equal(t, 2, last.Total)
	assert.Equal(t, 1, last.Errors)
	//
	_, err = Batch(context.Background(), files, WithFlushLines(0))
	assert.Error(t, err)
	_, err = Batch(context.Background(), []NamedSource{{Name: "nil"}})
	assert.Equal(t, core.EINVALID, core.Code(err))
}
