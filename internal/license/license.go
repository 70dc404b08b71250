package license

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tusharlock10/sentinel-hwid/internal/crypto"
)

var (
	// ErrMalformedCode is returned when a supplied code is not four groups of
	// four hex characters.
	ErrMalformedCode = errors.New("malformed unique code")

	// ErrMismatch is returned by Verify when the codes differ.
	ErrMismatch = errors.New("unique code does not match this machine")
)

const codeLinePrefix = "Unique Code:"

// ParseCode canonicalizes a user-supplied code. Case and surrounding
// whitespace are ignored, and the 16 hex characters may be given without
// hyphens.
func ParseCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) == 16 && !strings.Contains(code, "-") {
		code = code[0:4] + "-" + code[4:8] + "-" + code[8:12] + "-" + code[12:16]
	}
	if !crypto.ValidCode(code) {
		return "", fmt.Errorf("%w: %q", ErrMalformedCode, s)
	}
	return code, nil
}

// Verify compares an expected code against the code computed for this
// machine. expected is parsed with ParseCode first.
func Verify(expected, actual string) error {
	want, err := ParseCode(expected)
	if err != nil {
		return err
	}
	if want != actual {
		return fmt.Errorf("%w: expected %s, computed %s", ErrMismatch, want, actual)
	}
	return nil
}

// codeFile is the JSON report shape; only unique_code is read.
type codeFile struct {
	UniqueCode string `json:"unique_code"`
}

// LoadCode reads a stored code from path. The file may hold the bare code,
// a saved text report (the "Unique Code:" line is used) or a saved JSON
// report.
func LoadCode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read code file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var f codeFile
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return "", fmt.Errorf("%w: invalid JSON report: %v", ErrMalformedCode, err)
		}
		return ParseCode(f.UniqueCode)
	}

	var first string
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, codeLinePrefix); ok {
			return ParseCode(rest)
		}
		if first == "" && line != "" {
			first = line
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read code file: %w", err)
	}
	return ParseCode(first)
}
