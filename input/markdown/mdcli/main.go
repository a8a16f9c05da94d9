/*
Command mdcli is an interactive shell for inspecting Markdown documents.

	mdcli -trace Info -setext README.md

Enter "help" for a list of commands.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/k0kubun/pp"
	"github.com/npillmayer/mdtree/backend/html"
	"github.com/npillmayer/mdtree/core"
	"github.com/npillmayer/mdtree/engine/ast"
	"github.com/npillmayer/mdtree/engine/ast/astdebug"
	"github.com/npillmayer/mdtree/engine/query"
	"github.com/npillmayer/mdtree/engine/stream"
	htmlin "github.com/npillmayer/mdtree/input/html"
	"github.com/npillmayer/mdtree/input/markdown"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
)

// tracer traces with key 'mdtree.cli'
func tracer() tracing.Trace {
	return tracing.Select("mdtree.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	maxBuffer := flag.String("max-buffer", "8 MiB", "Streaming buffer limit")
	setext := flag.Bool("setext", false, "Generate setext headings")
	fence := flag.String("fence", "`", "Fence character for generated code blocks")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":      "go",
		"trace.mdtree.cli":     *tlevel,
		"trace.mdtree.stream":  "Error",
		"trace.mdtree.query":   "Error",
		"stream.max-buffer":    *maxBuffer,
		"markdown.setext":      strconv.FormatBool(*setext),
		"markdown.fence-char":  *fence,
		"markdown.positions":   "true",
		"markdown.max-nesting": "64",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to Markdown CLI") // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up REPL
	repl, err := readline.New("md > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl, conf: conf}
	//
	// load document to use
	if flag.NArg() > 0 {
		if err := intp.load(flag.Arg(0)); err != nil {
			core.UserError(err)
			os.Exit(4)
		}
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.REPL()                             // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl *readline.Instance
	conf testconfig.Conf
	name string
	src  []byte
	doc  *ast.Document
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd := parseCommand(line)
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(core.FormatUserError(err))
			tracer().Debugf("%+v", err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Command is a command word followed by its arguments.
type Command struct {
	code int
	args []string
	rest string // arguments as typed, for XPath expressions
}

const (
	QUIT int = iota
	HELP
	LOAD
	INGEST
	AST
	GEN
	HTML
	WORDS
	HEADINGS
	XPATH
	DOT
	STREAM
	BATCH
)

var commands = map[string]int{
	"quit": QUIT, "exit": QUIT, "help": HELP, "load": LOAD, "ingest": INGEST,
	"ast": AST, "gen": GEN, "html": HTML, "words": WORDS, "headings": HEADINGS,
	"xpath": XPATH, "dot": DOT, "stream": STREAM, "batch": BATCH,
}

func parseCommand(line string) *Command {
	fields := strings.Fields(line)
	command := &Command{code: HELP, args: fields[1:]}
	if code, ok := commands[strings.ToLower(fields[0])]; ok {
		command.code = code
	}
	command.rest = strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	tracer().Debugf("parse command = %v", fields)
	return command
}

func (intp *Intp) execute(cmd *Command) (bool, error) {
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
		return false, nil
	case LOAD:
		if len(cmd.args) != 1 {
			return false, core.Error(core.EINVALID, "usage: load <file>")
		}
		return false, intp.load(cmd.args[0])
	case INGEST:
		if len(cmd.args) != 1 {
			return false, core.Error(core.EINVALID, "usage: ingest <file.html>")
		}
		return false, intp.ingest(cmd.args[0])
	case BATCH:
		return false, intp.batch(cmd.args)
	}
	if intp.doc == nil {
		return false, core.Error(core.EMISSING, "no document loaded")
	}
	switch cmd.code {
	case AST:
		pp.Println(intp.doc)
	case GEN:
		out, err := markdown.Generate(intp.doc, markdown.WithConfig(intp.conf))
		if err != nil {
			return false, err
		}
		pterm.Print(out)
	case HTML:
		pterm.Print(html.Render(intp.doc, html.Options{HeadingIDs: true, Sanitize: true}))
	case WORDS:
		pterm.Printfln("%s has %s words", intp.name, humanize.Comma(int64(query.WordCount(intp.doc))))
	case HEADINGS:
		data := pterm.TableData{{"Line", "Level", "Heading"}}
		for _, h := range query.Headings(intp.doc) {
			line := ""
			if h.Pos != nil {
				line = strconv.Itoa(h.Pos.StartLine)
			}
			indent := strings.Repeat("  ", h.Level-1)
			data = append(data, []string{line, strconv.Itoa(h.Level), indent + h.Text})
		}
		return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	case XPATH:
		values, err := query.SelectValues(intp.doc, cmd.rest)
		if err != nil {
			return false, err
		}
		for i, v := range values {
			pterm.Printfln("%3d: %q", i+1, v)
		}
		pterm.Info.Printfln("%d matches", len(values))
	case DOT:
		return false, intp.dot(cmd.args)
	case STREAM:
		return false, intp.stream(cmd.args)
	}
	return false, nil
}

func (intp *Intp) load(name string) error {
	src, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "could not read "+name)
	}
	doc, err := markdown.Parse(src, markdown.WithConfig(intp.conf))
	if err != nil {
		return err
	}
	intp.name, intp.src, intp.doc = name, src, doc
	pterm.Info.Printfln("loaded %s (%s, %d blocks)", name, humanize.Bytes(uint64(len(src))), len(doc.Children))
	return nil
}

func (intp *Intp) ingest(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "could not open "+name)
	}
	defer f.Close()
	doc, err := htmlin.FromHTML(f, htmlin.Options{Ignore: "nav, header, footer"})
	if err != nil {
		return err
	}
	out, err := markdown.Generate(doc, markdown.WithConfig(intp.conf))
	if err != nil {
		return err
	}
	intp.name, intp.src = name, []byte(out)
	intp.doc = markdown.MustParse(intp.src, markdown.WithConfig(intp.conf))
	pterm.Info.Printfln("converted %s to %d blocks", name, len(intp.doc.Children))
	return nil
}

func (intp *Intp) dot(args []string) error {
	if len(args) != 1 {
		return core.Error(core.EINVALID, "usage: dot <file.dot>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return errors.Wrap(err, "could not create "+args[0])
	}
	defer f.Close()
	if err := astdebug.ToGraphViz(intp.doc, f, tracer()); err != nil {
		return err
	}
	pterm.Info.Printfln("wrote %s", args[0])
	return nil
}

// stream re-parses the current document incrementally and prints the events.
func (intp *Intp) stream(args []string) error {
	size := 64
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return core.WrapError(err, core.EINVALID, "chunk size not numeric: %s", args[0])
		}
		size = n
	}
	src := stream.ReaderSource(bytes.NewReader(intp.src), size)
	events, err := stream.Stream(context.Background(), src, stream.WithConfig(intp.conf))
	if err != nil {
		return err
	}
	for e := range events {
		printEvent(e)
	}
	return nil
}

func (intp *Intp) batch(names []string) error {
	if len(names) == 0 {
		return core.Error(core.EINVALID, "usage: batch <file> …")
	}
	var files []stream.NamedSource
	for _, name := range names {
		f, err := os.Open(name)
		if err != nil {
			return errors.Wrap(err, "could not open "+name)
		}
		defer f.Close()
		files = append(files, stream.NamedSource{Name: name, Source: stream.ReaderSource(f, 0)})
	}
	events, err := stream.Batch(context.Background(), files, stream.WithConfig(intp.conf))
	if err != nil {
		return err
	}
	for e := range events {
		printEvent(e)
	}
	return nil
}

func printEvent(e stream.Event) {
	switch e.Kind {
	case stream.BlockEvent:
		pterm.Printfln("  %-10s %s %v", e.Block.Kind(), ast.PositionOf(e.Block), e.Block)
	case stream.ErrorEvent, stream.FileError:
		pterm.Error.Println(e.String())
	case stream.BatchComplete:
		pterm.Info.Printfln("%d files, %d errors", e.Total, e.Errors)
	default:
		pterm.Info.Println(e.String())
	}
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	load <file>          parse a Markdown file
	ingest <file.html>   convert an HTML file to Markdown
	ast                  print the document tree
	gen                  generate Markdown from the document tree
	html                 render the document as HTML
	words                count words
	headings             print the document outline
	xpath <expr>         evaluate an XPath expression, e.g. //link/@url
	dot <file.dot>       write the document tree in GraphViz format
	stream [size]        parse the document in chunks of size bytes
	batch <file> …       stream-parse a set of files
	quit                 leave the shell
	`)
}
