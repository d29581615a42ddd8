package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pkt.systems/mdpage/answer"
	"pkt.systems/mdpage/console"
	"pkt.systems/mdpage/export"
	"pkt.systems/mdpage/internal/logging"
	"pkt.systems/mdpage/stream"
)

type askOptions struct {
	interactive bool
	pdf         bool
	historyFile string
}

func (a *app) askCommand() *cobra.Command {
	var opts askOptions
	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Ask the answer server and render the streamed answer",
		Long: `Ask sends a query over the websocket, renders the answer as it streams
and optionally exports it as a PDF. Without a query, or with -i, an interactive
prompt reads one query per line. Prompt commands:

  :history   list recent searches     !N      ask recent search N again
  :pdf       export the last answer   :theme  switch between dark and light
  :quit      leave`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ask(cmd.Context(), strings.Join(args, " "), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "read queries from the prompt")
	f.BoolVar(&opts.pdf, "pdf", false, "export the answer as a PDF when it is complete")
	f.StringVar(&opts.historyFile, "history-file", defaultHistoryFile(), "recent searches file, empty to disable")
	f.String("url", "", "websocket URL of the answer server")
	f.Duration("idle-timeout", 0, "complete an answer after this much silence (servers without done frames)")
	f.String("out-dir", "", "directory for exported PDFs")
	f.StringP("theme", "t", "", "terminal theme")
	f.IntP("width", "w", 0, "wrap width (0 uses the terminal width)")
	f.String("hyperlinks", "", "OSC 8 hyperlinks: auto|always|never")
	a.bind(cmd, "client.url", "url")
	a.bind(cmd, "client.idle_timeout", "idle-timeout")
	a.bind(cmd, "pdf.out_dir", "out-dir")
	a.bind(cmd, "console.theme", "theme")
	a.bind(cmd, "console.width", "width")
	a.bind(cmd, "console.hyperlinks", "hyperlinks")
	return cmd
}

func defaultHistoryFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mdpage", "history.yaml")
}

func (a *app) ask(ctx context.Context, query string, opts askOptions) error {
	theme, ok := console.ThemeByName(a.cfg.Console.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", a.cfg.Console.Theme, strings.Join(console.AvailableThemes(), ", "))
	}
	history := console.NewHistory(a.cfg.Client.HistorySize)
	if opts.historyFile != "" {
		h, err := console.LoadHistory(opts.historyFile, a.cfg.Client.HistorySize)
		if err != nil {
			a.log.Warn().Err(err).Msg("ignoring unreadable history")
		} else {
			history = h
		}
	}

	log := logging.Component(a.log, "client")
	session := stream.NewSession(a.cfg.Client.URL, stream.WithSessionLogger(log))
	defer session.Close()

	width := a.cfg.Console.Width
	if width <= 0 {
		width = terminalWidth(a.stdout, 80)
	}
	q := &asker{
		session:     session,
		theme:       theme,
		width:       width,
		hyperlinks:  console.Hyperlinks(a.cfg.Console.Hyperlinks, nil),
		history:     history,
		historyPath: opts.historyFile,
		exporter:    a.newExporter(),
		outDir:      a.cfg.PDF.OutDir,
		out:         a.stdout,
		dialTimeout: a.cfg.Client.DialTimeout,
		idle:        a.cfg.Client.IdleTimeout,
		log:         log,
	}
	q.setTheme(theme)

	if opts.interactive || strings.TrimSpace(query) == "" {
		return q.loop(ctx, a.stdin)
	}
	if err := q.ask(ctx, query); err != nil {
		return err
	}
	if opts.pdf {
		return q.exportLast(ctx)
	}
	return nil
}

// asker runs queries over one session and renders their answers.
type asker struct {
	session     *stream.Session
	theme       console.Theme
	width       int
	hyperlinks  bool
	renderer    *console.Renderer
	live        *console.Live
	history     *console.History
	historyPath string
	exporter    *export.Exporter
	outDir      string
	out         io.Writer
	dialTimeout time.Duration
	idle        time.Duration
	log         zerolog.Logger

	lastQuery  string
	lastAnswer string
}

func (q *asker) setTheme(t console.Theme) {
	q.theme = t
	q.renderer = console.NewRenderer(
		console.WithTheme(t),
		console.WithWidth(q.width),
		console.WithHyperlinks(q.hyperlinks),
	)
	q.live = q.renderer.Live(q.out)
}

// ask streams the answer to query. The text received before a failure is
// still rendered.
func (q *asker) ask(ctx context.Context, query string) error {
	query, err := answer.CheckQuery(query)
	if err != nil {
		return err
	}
	q.history.Add(query, time.Now())
	q.saveHistory()

	sendCtx := ctx
	if q.dialTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, q.dialTimeout)
		defer cancel()
	}
	live := q.live
	r, err := q.session.Ask(sendCtx, query,
		stream.OnFragment(func(_, text string) {
			if err := live.Update(text); err != nil {
				q.log.Debug().Err(err).Msg("render failed")
			}
		}),
		stream.OnNotice(func(notice string) {
			_ = live.Notice(notice)
		}),
		stream.WithIdleTimeout(q.idle),
	)
	if err != nil {
		return err
	}
	text, err := r.Wait(ctx)
	if ferr := live.Finish(text); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	q.lastQuery = query
	q.lastAnswer = text
	return nil
}

func (q *asker) exportLast(ctx context.Context) error {
	if !q.exporter.Enabled(q.lastAnswer, false) {
		return export.ErrNothingToExport
	}
	path, res, err := q.exporter.ExportFile(ctx, q.outDir, q.lastAnswer, q.lastQuery)
	if err != nil {
		return err
	}
	fmt.Fprintf(q.out, "saved %s (%d pages)\n", path, res.Pages)
	return nil
}

func (q *asker) saveHistory() {
	if q.historyPath == "" {
		return
	}
	if err := q.history.Save(q.historyPath); err != nil {
		q.log.Warn().Err(err).Msg("saving history failed")
	}
}

// loop reads prompt lines from in until EOF, :quit or ctx ends. Failed
// queries are reported and the prompt continues.
func (q *asker) loop(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	q.prompt()
	for sc.Scan() {
		if err := q.command(ctx, strings.TrimSpace(sc.Text())); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			_ = q.live.Notice(err.Error())
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		q.prompt()
	}
	return sc.Err()
}

var errQuit = errors.New("quit")

func (q *asker) command(ctx context.Context, line string) error {
	switch {
	case line == "":
		return nil
	case line == ":q" || line == ":quit" || line == ":exit":
		return errQuit
	case line == ":history" || line == ":h":
		lines := q.history.Lines(q.width)
		if len(lines) == 0 {
			fmt.Fprintln(q.out, "no recent searches")
		}
		for _, l := range lines {
			fmt.Fprintln(q.out, l)
		}
		return nil
	case line == ":pdf":
		return q.exportLast(ctx)
	case line == ":theme":
		q.setTheme(console.Toggle(q.theme))
		fmt.Fprintf(q.out, "theme: %s\n", q.theme.Name())
		return nil
	case strings.HasPrefix(line, "!"):
		n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
		if err != nil {
			return fmt.Errorf("expected !N with N a recent search number")
		}
		query, ok := q.history.Get(n)
		if !ok {
			return fmt.Errorf("no recent search %d", n)
		}
		return q.ask(ctx, query)
	default:
		return q.ask(ctx, line)
	}
}

func (q *asker) prompt() {
	fmt.Fprint(q.out, "? ")
}
