package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimedOut marks a sub-operation that exceeded its deadline. Timeouts
// are treated identically to process failures by every stage.
var ErrTimedOut = errors.New("timed out")

// runShell executes a shell command in dir with a bounded timeout and
// returns its combined output. The process is killed (not awaited) when
// ctx is cancelled or the timeout elapses.
func runShell(ctx context.Context, dir, command string, timeout time.Duration) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = dir

	var out bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out.String(), fmt.Errorf("%w after %s: %s", ErrTimedOut, timeout, command)
	}

	if err != nil {
		return out.String(), fmt.Errorf("run %q: %w", command, err)
	}

	return out.String(), nil
}
