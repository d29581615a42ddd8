package mdpage

import (
	"errors"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports invalid UTF-8 input.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports input that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
)

const (
	minBinarySample = 64
	maxControlPct   = 2
)

// ValidateInput returns an error if the input is not valid UTF-8 or appears binary.
func ValidateInput(src []byte) error {
	if !utf8.Valid(src) {
		return ErrInvalidUTF8
	}
	var total, control int
	for _, b := range src {
		total++
		if b == 0x00 {
			return ErrBinaryInput
		}
		if isControlByte(b) {
			control++
		}
	}
	if total >= minBinarySample && control*100 >= total*maxControlPct {
		return ErrBinaryInput
	}
	return nil
}

// Sanitize drops invalid UTF-8 sequences and control characters other than
// newline, carriage return and tab. Streamed answers pass through it before
// segmentation.
func Sanitize(text string) string {
	src := []byte(text)
	// A truncated rune at the end of the buffer is dropped with the rest.
	clean, _ := sanitizeBytes(make([]byte, len(src)), src)
	return string(clean)
}

func isControlByte(b byte) bool {
	if b < 0x09 {
		return true
	}
	if b > 0x0D && b < 0x20 {
		return true
	}
	if b == 0x7F {
		return true
	}
	return false
}

func isControlRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	if r < 0x20 || r == 0x7F {
		return true
	}
	return false
}

func sanitizeBytes(dst []byte, src []byte) ([]byte, []byte) {
	di := 0
	i := 0
	for i < len(src) {
		if !utf8.FullRune(src[i:]) {
			break
		}
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if size == 0 || i+size > len(src) {
			break
		}
		if isControlRune(r) {
			i += size
			continue
		}
		copy(dst[di:], src[i:i+size])
		di += size
		i += size
	}
	return dst[:di], src[i:]
}
