package dump

import (
	"strings"
	"testing"
)

func TestSniffObjectMagic(t *testing.T) {
	f, err := Sniff(strings.NewReader("ORIO\x00\x00\x00\x00"))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if f != FormatObject {
		t.Fatalf("Sniff = %s, want object", f)
	}
}

func TestSniffOrionppMagic(t *testing.T) {
	f, err := Sniff(strings.NewReader("OPPO\x00\x00\x00\x00"))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if f != FormatOrionpp {
		t.Fatalf("Sniff = %s, want orionpp", f)
	}
}

func TestSniffUnknownMagic(t *testing.T) {
	f, err := Sniff(strings.NewReader("JUNK"))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if f != FormatUnknown {
		t.Fatalf("Sniff = %s, want unknown", f)
	}
}

func TestSniffTooShort(t *testing.T) {
	if _, err := Sniff(strings.NewReader("OR")); err == nil {
		t.Fatal("Sniff of a too-short reader: want error, got nil")
	}
}
