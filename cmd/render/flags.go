package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
)

const (
	formatHTML = "html"
	formatJSON = "json"
	formatPDF  = "pdf"
)

type options struct {
	input         string
	photo         string
	template      string
	width         float64
	format        string
	output        string
	listTemplates bool
	chromium      string
	timeout       time.Duration
	verbose       bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVarP(&opts.input, "input", "i", "", "resume record as YAML or JSON (\"-\" for stdin, empty for the sample)")
	fs.StringVar(&opts.photo, "photo", "", "local image used as the resume photo")
	fs.StringVarP(&opts.template, "template", "t", "", "template id, overrides the record")
	fs.Float64VarP(&opts.width, "width", "w", 0, "container width in px, 0 renders unscaled")
	fs.StringVarP(&opts.format, "format", "f", formatHTML, "output format: html, json or pdf")
	fs.StringVarP(&opts.output, "output", "o", "", "output file (stdout when empty)")
	fs.BoolVar(&opts.listTemplates, "list-templates", false, "print the template catalog and exit")
	fs.StringVar(&opts.chromium, "chromium", "", "chromium binary for pdf output")
	fs.DurationVar(&opts.timeout, "timeout", 90*time.Second, "pdf render timeout")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	if len(args) > 0 {
		args = args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	switch opts.format {
	case formatHTML, formatJSON:
	case formatPDF:
		if opts.output == "" {
			return options{}, errors.New("pdf output requires --output")
		}
	default:
		return options{}, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}
