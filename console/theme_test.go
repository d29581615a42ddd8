package console

import "testing"

func TestThemeByName(t *testing.T) {
	for _, name := range []string{"default", "dark", "light", "boring", " Dark "} {
		if _, ok := ThemeByName(name); !ok {
			t.Fatalf("expected theme %q to be available", name)
		}
	}
	if th, ok := ThemeByName(""); !ok || th.Name() != "default" {
		t.Fatalf("empty name should resolve to default")
	}
	if _, ok := ThemeByName("neon"); ok {
		t.Fatalf("unexpected theme neon")
	}
	if got := AvailableThemes(); len(got) != 4 || got[0] != "boring" {
		t.Fatalf("unexpected theme list %v", got)
	}
}

func TestBoringThemeHasNoEscapes(t *testing.T) {
	th, _ := ThemeByName("boring")
	if th.Styles() != (Styles{}) {
		t.Fatalf("boring theme should carry no styles")
	}
}

func TestToggle(t *testing.T) {
	dark, _ := ThemeByName("dark")
	if got := Toggle(dark).Name(); got != "light" {
		t.Fatalf("toggle dark = %q", got)
	}
	if got := Toggle(DefaultTheme()).Name(); got != "dark" {
		t.Fatalf("toggle default = %q", got)
	}
}

func TestHyperlinksMode(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}
	if !Hyperlinks("on", env(nil)) || Hyperlinks("off", env(map[string]string{"WT_SESSION": "1"})) {
		t.Fatalf("explicit modes ignored")
	}
	if !Hyperlinks("auto", env(map[string]string{"TERM_PROGRAM": "WezTerm"})) {
		t.Fatalf("WezTerm should support OSC 8")
	}
	if Hyperlinks("auto", env(map[string]string{"TERM": "kitty", "OSC8": "0"})) {
		t.Fatalf("OSC8=0 should disable links")
	}
	if !DetectOSC8Support(env(map[string]string{"VTE_VERSION": "6003"})) {
		t.Fatalf("VTE >= 5000 should support OSC 8")
	}
	if DetectOSC8Support(env(map[string]string{"TERM": "xterm"})) {
		t.Fatalf("plain xterm should not be detected")
	}
}
