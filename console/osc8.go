package console

import (
	"os"
	"strconv"
	"strings"
)

const (
	osc8Start = "\x1b]8;;"
	osc8End   = "\x1b]8;;\x1b\\"
)

// DetectOSC8Support reports whether the terminal described by getenv likely
// supports OSC 8 hyperlinks. A nil getenv reads the process environment.
func DetectOSC8Support(getenv func(string) string) bool {
	if getenv == nil {
		getenv = os.Getenv
	}
	if getenv("OSC8") == "0" {
		return false
	}
	if getenv("DOMTERM") != "" || getenv("WT_SESSION") != "" {
		return true
	}
	switch getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "vscode":
		return true
	}
	if strings.Contains(strings.ToLower(getenv("TERM")), "kitty") {
		return true
	}
	if vte := getenv("VTE_VERSION"); vte != "" {
		if n, err := strconv.Atoi(vte); err == nil && n >= 5000 {
			return true
		}
	}
	return false
}

// Hyperlinks resolves a hyperlinks setting of "auto", "on" or "off".
func Hyperlinks(mode string, getenv func(string) string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on", "true", "always":
		return true
	case "off", "false", "never":
		return false
	default:
		return DetectOSC8Support(getenv)
	}
}

func hyperlink(url, text string) string {
	return osc8Start + url + "\x1b\\" + text + osc8End
}
