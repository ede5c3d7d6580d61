package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"resumePreview/internal/catalog"
	"resumePreview/internal/exporter"
	"resumePreview/internal/layouts"
	"resumePreview/internal/preview"
)

func run(opts options, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	if opts.listTemplates {
		return listTemplates(stdout)
	}

	rec, err := loadRecord(opts.input, stdin)
	if err != nil {
		return err
	}
	if opts.template != "" {
		if _, ok := catalog.Lookup(opts.template); !ok {
			return fmt.Errorf("unknown template %q", opts.template)
		}
		rec = rec.WithTemplate(opts.template)
	}
	if opts.photo != "" {
		p, err := loadPhoto(opts.photo)
		if err != nil {
			return err
		}
		rec = rec.WithPhoto(p)
	}

	frame := preview.RenderStatic(rec, opts.width)
	logger.Debug("resume rendered",
		slog.String("template_id", frame.TemplateID),
		slog.Float64("scale", frame.Scale),
		slog.Any("sections", frame.Sections),
	)

	var out []byte
	switch opts.format {
	case formatJSON:
		out, err = json.MarshalIndent(frame, "", "  ")
		if err == nil {
			out = append(out, '\n')
		}
	case formatHTML:
		out, err = preview.Document(preview.DocumentTitle(&rec), frame)
	case formatPDF:
		out, err = printPDF(opts, logger, preview.DocumentTitle(&rec), frame)
	}
	if err != nil {
		return err
	}
	return writeOutput(opts.output, stdout, out)
}

func printPDF(opts options, logger *slog.Logger, title string, frame preview.Frame) ([]byte, error) {
	document, err := preview.Document(title, frame)
	if err != nil {
		return nil, err
	}
	printer := exporter.RodPrinter{Bin: opts.chromium, Timeout: opts.timeout, Logger: logger}
	result, err := printer.Print(context.Background(), document)
	if err != nil {
		return nil, err
	}
	return result.PDF, nil
}

func listTemplates(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHOTO\tDESCRIPTION")
	for _, d := range catalog.All() {
		photo := "no"
		if layouts.Resolve(d.ID).ShowsPhoto() {
			photo = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, photo, d.Description)
	}
	return tw.Flush()
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
