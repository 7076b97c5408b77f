// Command archetype casts documents against schema files.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/reoring/archetype"
	"github.com/reoring/archetype/i18n"
	"github.com/reoring/archetype/loader"
	"github.com/reoring/archetype/rules"
	"github.com/reoring/archetype/source"
)

// Exit codes.
const (
	exitOK     = 0
	exitIssues = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	env            envConfig
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	env, err := loadEnv()
	if err != nil {
		fmt.Fprintf(stderr, "environment: %v\n", err)
		return exitUsage
	}
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr, env: env}
	switch args[0] {
	case "cast":
		return c.castCmd(args[1:])
	case "paths":
		return c.pathsCmd(args[1:])
	case "jsonschema":
		return c.jsonSchemaCmd(args[1:])
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "archetype CLI\n\nUsage:\n  archetype cast -schema schema.yaml [-format json|yaml|msgpack] [-out json|yaml|msgpack] [-include a,b | -exclude a,b] [-select QUERY] [FILE]\n  archetype paths -schema schema.yaml\n  archetype jsonschema -schema schema.yaml\n\nEnvironment:\n  ARCHETYPE_FORMAT     default document format (json)\n  ARCHETYPE_LANG       issue message language (en, ja)\n  ARCHETYPE_LOG_LEVEL  debug, info, warn or error")
}

func (c *cli) fail(format string, a ...any) int {
	fmt.Fprintf(c.stderr, format+"\n", a...)
	return exitUsage
}

func (c *cli) castCmd(args []string) int {
	fs := flag.NewFlagSet("cast", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var schemaPath, format, out, include, exclude, query, lang string
	var verbose, pretty bool
	fs.StringVar(&schemaPath, "schema", "", "schema file (.yaml, .yml or .json)")
	fs.StringVar(&format, "format", "", "input format; defaults to the file extension, then ARCHETYPE_FORMAT")
	fs.StringVar(&out, "out", "json", "output format")
	fs.StringVar(&include, "include", "", "comma-separated paths to keep")
	fs.StringVar(&exclude, "exclude", "", "comma-separated paths to drop")
	fs.StringVar(&query, "select", "", "gjson query applied to the JSON result")
	fs.StringVar(&lang, "lang", c.env.Lang, "issue message language")
	fs.BoolVar(&pretty, "pretty", false, "indent output")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" || fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}
	if include != "" && exclude != "" {
		return c.fail("cast: -include and -exclude are mutually exclusive")
	}
	if query != "" && out != "json" {
		return c.fail("cast: -select needs -out json")
	}

	logger := newLogger(c.stderr, c.env.LogLevel, verbose)
	s, err := c.compile(schemaPath, logger, archetype.WithTranslator(i18n.New(lang)))
	if err != nil {
		return c.fail("cast: %v", err)
	}

	in := c.stdin
	inFormat := format
	if fs.NArg() == 1 {
		name := fs.Arg(0)
		f, err := os.Open(name)
		if err != nil {
			return c.fail("cast: %v", err)
		}
		defer f.Close()
		in = f
		if inFormat == "" {
			if ff, err := source.FormatFromPath(name); err == nil {
				inFormat = string(ff)
			}
		}
	}
	if inFormat == "" {
		inFormat = c.env.Format
	}
	inF, err := source.ParseFormat(inFormat)
	if err != nil {
		return c.fail("cast: %v", err)
	}
	outF, err := source.ParseFormat(out)
	if err != nil {
		return c.fail("cast: %v", err)
	}

	doc, err := source.DecodeDocument(in, inF)
	if err != nil {
		return c.fail("cast: %v", err)
	}
	logger.Debug("document decoded", "format", inF, "keys", len(doc))

	var proj map[string]int
	switch {
	case include != "":
		proj = archetype.Include(splitCSV(include)...)
	case exclude != "":
		proj = archetype.Exclude(splitCSV(exclude)...)
	}
	res, err := s.Cast(doc, proj)
	if err != nil {
		iss, ok := archetype.AsIssues(err)
		if !ok {
			return c.fail("cast: %v", err)
		}
		for _, it := range iss {
			fmt.Fprintf(c.stderr, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
		}
		return exitIssues
	}

	if query == "" {
		if err := source.Encode(c.stdout, res, outF, pretty); err != nil {
			return c.fail("cast: encode: %v", err)
		}
		return exitOK
	}
	var buf bytes.Buffer
	if err := source.Encode(&buf, res, source.JSON, false); err != nil {
		return c.fail("cast: encode: %v", err)
	}
	r := gjson.GetBytes(buf.Bytes(), query)
	if !r.Exists() {
		return c.fail("cast: -select %q matched nothing", query)
	}
	fmt.Fprintln(c.stdout, r.Raw)
	return exitOK
}

func (c *cli) pathsCmd(args []string) int {
	fs := flag.NewFlagSet("paths", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var schemaPath string
	var verbose bool
	fs.StringVar(&schemaPath, "schema", "", "schema file")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" {
		fs.Usage()
		return exitUsage
	}
	s, err := c.compile(schemaPath, newLogger(c.stderr, c.env.LogLevel, verbose))
	if err != nil {
		return c.fail("paths: %v", err)
	}
	for _, p := range s.Paths() {
		fmt.Fprintf(c.stdout, "%s\t%s\t%s\n", p.Path, p.Tag, p.Kind)
	}
	return exitOK
}

func (c *cli) jsonSchemaCmd(args []string) int {
	fs := flag.NewFlagSet("jsonschema", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	var schemaPath, out string
	fs.StringVar(&schemaPath, "schema", "", "schema file")
	fs.StringVar(&out, "out", "json", "output format (json or yaml)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if schemaPath == "" {
		fs.Usage()
		return exitUsage
	}
	outF, err := source.ParseFormat(out)
	if err != nil || outF == source.MsgPack {
		return c.fail("jsonschema: unsupported output %q", out)
	}
	s, err := c.compile(schemaPath, newLogger(c.stderr, c.env.LogLevel, false))
	if err != nil {
		return c.fail("jsonschema: %v", err)
	}
	js, err := s.JSONSchema()
	if err != nil {
		return c.fail("jsonschema: %v", err)
	}
	if err := source.Encode(c.stdout, js, outF, true); err != nil {
		return c.fail("jsonschema: encode: %v", err)
	}
	return exitOK
}

func (c *cli) compile(path string, logger *slog.Logger, opts ...archetype.Option) (*archetype.Schema, error) {
	var lopts []loader.Option
	for name, fn := range rules.Builtins() {
		lopts = append(lopts, loader.WithValidator(name, fn))
	}
	root, err := loader.LoadFile(path, lopts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("schema loaded", "file", path, "fields", len(root.Fields))
	return archetype.Compile(root, append(opts, archetype.WithLogger(logger))...)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
