package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"pkt.systems/mdpage/answer"
	"pkt.systems/mdpage/internal/config"
	"pkt.systems/mdpage/internal/logging"
	"pkt.systems/mdpage/server"
)

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the answer server (websocket /ws, /process, /export)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "listen address")
	f.String("source", "", "answer source: gemini|simulator")
	f.String("model", "", "Gemini model")
	f.String("simulator-file", "", "Markdown file streamed by the simulator")
	f.StringSlice("allowed-origin", nil, "allowed browser origin (repeatable)")
	a.bind(cmd, "server.addr", "addr")
	a.bind(cmd, "answer.source", "source")
	a.bind(cmd, "answer.gemini.model", "model")
	a.bind(cmd, "answer.simulator.file", "simulator-file")
	a.bind(cmd, "server.allowed_origins", "allowed-origin")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	src, err := newSource(a.cfg)
	if err != nil {
		return err
	}
	srv := server.New(src, a.newExporter(), logging.Component(a.log, "server"), server.Config{
		AllowedOrigins:    a.cfg.Server.AllowedOrigins,
		MaxExportBytes:    a.cfg.Server.MaxExportBytes,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   a.cfg.Server.ShutdownTimeout,
	})
	return srv.ListenAndServe(ctx, a.cfg.Server.Addr)
}

func newSource(cfg *config.Config) (answer.Source, error) {
	switch cfg.Answer.Source {
	case "gemini":
		g := cfg.Answer.Gemini
		if g.APIKey == "" {
			return nil, errors.New("gemini source needs an API key (GOOGLE_API_KEY or answer.gemini.api_key)")
		}
		return answer.NewGemini(g.APIKey, g.Model, g.BaseURL, g.Timeout), nil
	default:
		s := cfg.Answer.Simulator
		if s.File != "" {
			return answer.NewSimulatorFromFile(s.File, s.ChunkRunes, s.Delay)
		}
		return &answer.Simulator{ChunkRunes: s.ChunkRunes, Delay: s.Delay}, nil
	}
}
