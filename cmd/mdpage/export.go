package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/mdpage"
	"pkt.systems/mdpage/export"
	"pkt.systems/mdpage/pdf"
)

type exportOptions struct {
	output string
	title  string
	strict bool
}

func (a *app) exportCommand() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export [inputs...]",
		Short: "Export Markdown files, URLs or stdin as a paginated PDF",
		Long: `Export lays out headings, paragraphs and flat lists on A4 pages and writes a PDF.
Without inputs Markdown is read from stdin. Without --output the file is written
to the output directory under a name derived from the title.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.export(cmd.Context(), args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file or directory, - for stdout")
	f.StringVar(&opts.title, "title", "", "document title (default: front matter title, first heading or input name)")
	f.BoolVar(&opts.strict, "strict", false, "reject invalid UTF-8 and binary input instead of sanitizing it")
	f.String("out-dir", "", "directory for derived file names")
	f.Bool("uncompressed", false, "write uncompressed page streams")
	a.bind(cmd, "pdf.out_dir", "out-dir")
	a.bind(cmd, "pdf.uncompressed", "uncompressed")
	return cmd
}

func (a *app) export(ctx context.Context, args []string, opts exportOptions) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs, err := parseInputs(args, a.stdin, nil)
	if err != nil {
		return err
	}
	data, err := readInputs(ctx, inputs)
	if err != nil {
		return err
	}
	if opts.strict {
		if err := mdpage.ValidateInput(data); err != nil {
			return err
		}
	}
	meta, body := mdpage.SplitFrontMatter(string(data))
	if strings.TrimSpace(body) == "" {
		return export.ErrNothingToExport
	}
	title := firstNonEmpty(opts.title, meta.Title, firstHeading(body), inputTitle(inputs))

	exp := a.newExporter()
	var (
		path string
		res  pdf.Result
	)
	switch {
	case opts.output == "-":
		if isTerminal(a.stdout) {
			return errors.New("refusing to write PDF to a terminal; use -o/--output")
		}
		res, err = exp.Export(ctx, a.stdout, body, title)
		path = "stdout"
	case opts.output == "":
		path, res, err = exp.ExportFile(ctx, a.cfg.PDF.OutDir, body, title)
	case isDir(opts.output):
		path, res, err = exp.ExportFile(ctx, normalizePath(opts.output), body, title)
	default:
		path = normalizePath(opts.output)
		f, ferr := createOutput(path)
		if ferr != nil {
			return ferr
		}
		res, err = exp.Export(ctx, f, body, title)
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "wrote %s (%d pages, %d bytes)\n", path, res.Pages, res.Bytes)
	return nil
}

func firstHeading(body string) string {
	for _, b := range mdpage.Segment(body) {
		if b.Kind == mdpage.BlockHeading {
			return b.Text
		}
	}
	return ""
}

func inputTitle(inputs []input) string {
	if len(inputs) == 0 || inputs[0].name == "stdin" {
		return ""
	}
	base := filepath.Base(inputs[0].name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
