package mdpage

import "testing"

func TestValidateInputRejectsInvalidUTF8(t *testing.T) {
	data := []byte{0xff, 0xfe, 0xfd}
	if err := ValidateInput(data); err != ErrInvalidUTF8 {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestValidateInputRejectsBinary(t *testing.T) {
	data := append([]byte("hello"), 0x00)
	if err := ValidateInput(data); err != ErrBinaryInput {
		t.Fatalf("expected ErrBinaryInput, got %v", err)
	}
}

func TestValidateInputAcceptsMarkdown(t *testing.T) {
	if err := ValidateInput([]byte("# Title\n\n- one\n- two\n")); err != nil {
		t.Fatalf("expected markdown to validate, got %v", err)
	}
}

func TestSanitizeDropsControlRunes(t *testing.T) {
	in := "a\x00b\x1bc\td\ne\xff"
	got := Sanitize(in)
	want := "abc\td\ne"
	if got != want {
		t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
	}
}

func TestSanitizeDropsTruncatedRune(t *testing.T) {
	in := "caf\xc3"
	if got := Sanitize(in); got != "caf" {
		t.Fatalf("Sanitize(%q) = %q, want %q", in, got, "caf")
	}
}
