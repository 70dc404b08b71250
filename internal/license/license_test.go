package license

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCodeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "code.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write code file: %v", err)
	}
	return path
}

func TestParseCode(t *testing.T) {
	cases := map[string]string{
		"72E5-CB31-53BC-15BA":     "72E5-CB31-53BC-15BA",
		"72e5-cb31-53bc-15ba":     "72E5-CB31-53BC-15BA",
		"  72E5-CB31-53BC-15BA\n": "72E5-CB31-53BC-15BA",
		"72e5cb3153bc15ba":        "72E5-CB31-53BC-15BA",
	}
	for in, want := range cases {
		got, err := ParseCode(in)
		if err != nil {
			t.Fatalf("ParseCode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCodeMalformed(t *testing.T) {
	for _, in := range []string{"", "72E5-CB31-53BC", "72E5-CB31-53BC-15BZ", "72E5_CB31_53BC_15BA", "72E5-CB31-53BC-15BA0"} {
		if _, err := ParseCode(in); !errors.Is(err, ErrMalformedCode) {
			t.Fatalf("ParseCode(%q): expected ErrMalformedCode, got %v", in, err)
		}
	}
}

func TestVerify(t *testing.T) {
	if err := Verify("72e5-cb31-53bc-15ba", "72E5-CB31-53BC-15BA"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	err := Verify("8857-2C76-03BD-2BB7", "72E5-CB31-53BC-15BA")
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}

	err = Verify("not-a-code", "72E5-CB31-53BC-15BA")
	if !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
}

func TestLoadCodeBare(t *testing.T) {
	path := writeCodeFile(t, "\n72e5-cb31-53bc-15ba\n")

	code, err := LoadCode(path)
	if err != nil {
		t.Fatalf("LoadCode: %v", err)
	}
	if code != "72E5-CB31-53BC-15BA" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestLoadCodeTextReport(t *testing.T) {
	report := `Hardware Information:
  Motherboard Serial: ABC123
  Motherboard UUID:   (unavailable)
  Network Interface:  eth0 AA:BB:CC:DD:EE:FF
  CPU Physical ID:    CPU001
  Disk Model:         (unavailable)
  Product Model:      Model-X

Unique Code: 72E5-CB31-53BC-15BA
`
	code, err := LoadCode(writeCodeFile(t, report))
	if err != nil {
		t.Fatalf("LoadCode: %v", err)
	}
	if code != "72E5-CB31-53BC-15BA" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestLoadCodeJSONReport(t *testing.T) {
	report := `{"platform":"linux","virtualization":"","hardware":{},"unique_code":"8857-2C76-03BD-2BB7"}`

	code, err := LoadCode(writeCodeFile(t, report))
	if err != nil {
		t.Fatalf("LoadCode: %v", err)
	}
	if code != "8857-2C76-03BD-2BB7" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestLoadCodeErrors(t *testing.T) {
	if _, err := LoadCode(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
	if _, err := LoadCode(writeCodeFile(t, "{not json")); !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode, got %v", err)
	}
	if _, err := LoadCode(writeCodeFile(t, "")); !errors.Is(err, ErrMalformedCode) {
		t.Fatalf("expected ErrMalformedCode for empty file, got %v", err)
	}
}
