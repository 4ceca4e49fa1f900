package feed

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizer_UTF8Passthrough(t *testing.T) {
	normalizer := NewNormalizer()

	input := []byte("<title>Héllo wörld, this is a long enough UTF-8 sample for detection</title>")
	output, converted := normalizer.Run(input)

	if converted {
		t.Error("Expected UTF-8 input to pass through without conversion")
	}
	if !bytes.Equal(output, input) {
		t.Error("Expected output bytes to be unchanged")
	}
}

func TestNormalizer_EmptyInput(t *testing.T) {
	normalizer := NewNormalizer()

	output, converted := normalizer.Run(nil)

	if converted {
		t.Error("Expected empty input to pass through")
	}
	if len(output) != 0 {
		t.Errorf("Expected empty output, got %d bytes", len(output))
	}
}

func TestNormalizer_Latin1Conversion(t *testing.T) {
	normalizer := NewNormalizer()

	// "café" in ISO-8859-1: é is the single byte 0xE9, which is invalid UTF-8.
	// Repeat the phrase so the statistical detector has enough signal.
	phrase := append([]byte("Le caf"), 0xE9)
	phrase = append(phrase, []byte(" est ouvert toute la journ")...)
	phrase = append(phrase, 0xE9, 'e', '.', ' ')
	input := bytes.Repeat(phrase, 20)

	if utf8.Valid(input) {
		t.Fatal("Test input must not be valid UTF-8")
	}

	output, converted := normalizer.Run(input)

	if !converted {
		t.Fatal("Expected latin-1 input to be converted")
	}
	if !utf8.Valid(output) {
		t.Error("Expected converted output to be valid UTF-8")
	}
	if !strings.Contains(string(output), "café") {
		t.Errorf("Expected 'café' in converted output, got: %.60s", output)
	}
}
