package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"pkt.systems/version"

	"pkt.systems/mdpage"
	"pkt.systems/mdpage/export"
	"pkt.systems/mdpage/internal/config"
	"pkt.systems/mdpage/internal/logging"
)

// app carries state shared by the subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	// bindings maps configuration keys to flag names per command.
	bindings map[*cobra.Command]map[string]string

	cfg *config.Config
	log zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		bindings: make(map[*cobra.Command]map[string]string),
		log:      zerolog.Nop(),
	}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:               "mdpage",
		Short:             "Stream research answers and export them as paginated PDFs",
		Version:           version.Current(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (default ./mdpage.yaml or ~/.config/mdpage/mdpage.yaml)")
	pf.String("log-level", "", "log level: trace|debug|info|warn|error")
	pf.String("log-format", "", "log format: auto|console|json")
	a.bind(root, "log.level", "log-level")
	a.bind(root, "log.format", "log-format")

	root.AddCommand(
		a.serveCommand(),
		a.askCommand(),
		a.exportCommand(),
		a.inspectCommand(),
		a.configCommand(),
		a.themesCommand(),
	)
	return root
}

func (a *app) bind(cmd *cobra.Command, key, name string) {
	if a.bindings[cmd] == nil {
		a.bindings[cmd] = make(map[string]string)
	}
	a.bindings[cmd][key] = name
}

// flagsFor resolves the bindings of cmd and its parents against the parsed
// flags of cmd. The nearest command wins when several bind the same key.
func (a *app) flagsFor(cmd *cobra.Command) map[string]*pflag.Flag {
	out := make(map[string]*pflag.Flag)
	for c := cmd; c != nil; c = c.Parent() {
		for key, name := range a.bindings[c] {
			if _, ok := out[key]; ok {
				continue
			}
			if f := cmd.Flags().Lookup(name); f != nil {
				out[key] = f
			}
		}
	}
	return out
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath, a.flagsFor(cmd))
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: logging.Format(cfg.Log.Format),
		Out:    a.stderr,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) newExporter() *export.Exporter {
	return export.New(
		export.WithConfig(a.cfg.PDFConfig()),
		export.WithGeometry(a.cfg.Geometry()),
		export.WithLayoutOptions(mdpage.WithThresholds(a.cfg.Thresholds())),
		export.WithLogger(logging.Component(a.log, "export")),
	)
}
