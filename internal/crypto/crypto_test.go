package crypto

import (
	"testing"
)

func TestUniqueCodeSamplePayload(t *testing.T) {
	code := UniqueCode([]byte("ABC123||AA:BB:CC:DD:EE:FF|CPU001||Model-X"))
	if code != "72E5-CB31-53BC-15BA" {
		t.Fatalf("expected 72E5-CB31-53BC-15BA, got %s", code)
	}
}

func TestUniqueCodeAllEmptyPayload(t *testing.T) {
	code := UniqueCode([]byte("|||||"))
	if code != "8857-2C76-03BD-2BB7" {
		t.Fatalf("expected 8857-2C76-03BD-2BB7, got %s", code)
	}
}

func TestDigestEmptyInput(t *testing.T) {
	fp := Digest(nil)
	if fp.Hex() != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected MD5 of empty input: %s", fp.Hex())
	}
	if code := FormatCode(fp); code != "D41D-8CD9-8F00-B204" {
		t.Fatalf("expected D41D-8CD9-8F00-B204, got %s", code)
	}
}

func TestUniqueCodeFormat(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("|||||"),
		[]byte("ABC123||AA:BB:CC:DD:EE:FF|CPU001||Model-X"),
		[]byte("ÄÖÜ|δοκιμή|00:1A:2B:3C:4D:5E,00:1A:2B:3C:4D:5F|0|Samsung SSD|MacBookPro18,3"),
	}
	for _, p := range payloads {
		code := UniqueCode(p)
		if len(code) != 19 {
			t.Fatalf("code %q has length %d, want 19", code, len(code))
		}
		if !ValidCode(code) {
			t.Fatalf("code %q does not match the code format", code)
		}
	}
}

func TestUniqueCodeDeterministic(t *testing.T) {
	p := []byte("ABC123||AA:BB:CC:DD:EE:FF|CPU001||Model-X")
	if UniqueCode(p) != UniqueCode(append([]byte(nil), p...)) {
		t.Fatal("same payload produced different codes")
	}
	if UniqueCode(p) == UniqueCode([]byte("ABC124||AA:BB:CC:DD:EE:FF|CPU001||Model-X")) {
		t.Fatal("different payloads produced the same code")
	}
}

func TestValidCode(t *testing.T) {
	valid := []string{"72E5-CB31-53BC-15BA", "0000-0000-0000-0000"}
	invalid := []string{
		"",
		"72e5-cb31-53bc-15ba",
		"72E5CB3153BC15BA",
		"72E5-CB31-53BC-15B",
		"72E5-CB31-53BC-15BA-",
		"72E5-CB31-53BC-15BG",
	}
	for _, s := range valid {
		if !ValidCode(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if ValidCode(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
