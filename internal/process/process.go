package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// KillDelay is how long a command gets to exit after the stop request before
// it is killed outright.
const KillDelay = 2 * time.Second

// CommandError records a failed external command. Stderr holds whatever the
// command printed before it failed, trimmed.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q failed: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Run executes name with args and returns its trimmed stdout.
// The command runs with the C locale so its output parses the same on every
// machine. When timeout elapses (or ctx is done) the process is asked to stop
// and is killed KillDelay later; Run returns the context error in that case.
func Run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C", "LANG=C")
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = KillDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &CommandError{
			Command: name,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}
