package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// input is one Markdown source named on the command line.
type input struct {
	name string
	open func(ctx context.Context) (io.ReadCloser, error)
}

// parseInputs resolves arguments to inputs: http(s) URLs, file:// URLs and
// plain paths. "-" reads stdin.
func parseInputs(args []string, stdin io.Reader, client *http.Client) ([]input, error) {
	inputs := make([]input, 0, len(args))
	for _, raw := range args {
		in, err := parseInput(raw, stdin, client)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func parseInput(raw string, stdin io.Reader, client *http.Client) (input, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return input{}, fmt.Errorf("empty input argument")
	}
	if raw == "-" {
		return input{name: "stdin", open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(stdin), nil
		}}, nil
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return input{name: raw, open: func(ctx context.Context) (io.ReadCloser, error) {
				return openURL(ctx, client, raw)
			}}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return input{name: path, open: func(context.Context) (io.ReadCloser, error) {
				return os.Open(normalizePath(path))
			}}, nil
		}
	}
	return input{name: raw, open: func(context.Context) (io.ReadCloser, error) {
		return os.Open(normalizePath(raw))
	}}, nil
}

// readInputs concatenates all inputs, separating them with a blank line so
// blocks of consecutive files never merge.
func readInputs(ctx context.Context, inputs []input) ([]byte, error) {
	var out []byte
	for i, in := range inputs {
		rc, err := in.open(ctx)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", in.name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", in.name, err)
		}
		if i > 0 {
			out = append(out, '\n', '\n')
		}
		out = append(out, data...)
	}
	return out, nil
}

func openURL(ctx context.Context, client *http.Client, raw string) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return resp.Body, nil
}

// createOutput creates path and its parent directories.
func createOutput(path string) (*os.File, error) {
	clean := normalizePath(path)
	if dir := filepath.Dir(clean); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(clean)
}

func isDir(path string) bool {
	info, err := os.Stat(normalizePath(path))
	return err == nil && info.IsDir()
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w when it is a terminal, else $COLUMNS,
// else fallback.
func terminalWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if width, err := strconv.Atoi(value); err == nil && width > 0 {
			return width
		}
	}
	return fallback
}
