package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"flowtop/model"
	"flowtop/util"
)

// BuildArgs completes the accounting command argument list. Operator args
// are kept first and verbatim; -n (no DNS), -x (machine output) and a
// single-sample limit are appended only when the operator did not supply
// them. nettop uses -l or -L for the sample count, so either suppresses
// the default.
func BuildArgs(extra []string) []string {
	args := append([]string{}, extra...)
	if !hasArg(extra, "-n") {
		args = append(args, "-n")
	}
	if !hasArg(extra, "-x") {
		args = append(args, "-x")
	}
	if !hasArg(extra, "-l") && !hasArg(extra, "-L") {
		args = append(args, "-L", "1")
	}
	return args
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

// CmdSource snapshots by running the accounting command once per tick.
type CmdSource struct {
	cmd     string
	args    []string
	timeout time.Duration
	log     *log.Logger
}

// NewCmdSource builds a source for cmd with completed args. A zero
// timeout falls back to 10 seconds.
func NewCmdSource(cmd string, extra []string, timeout time.Duration, logger *log.Logger) *CmdSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CmdSource{
		cmd:     cmd,
		args:    BuildArgs(extra),
		timeout: timeout,
		log:     logger,
	}
}

// Snapshot runs the command and captures its output lines.
func (s *CmdSource) Snapshot() (model.RawSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	at := time.Now()
	out, err := exec.CommandContext(ctx, s.cmd, s.args...).Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return model.RawSnapshot{}, fmt.Errorf("%s timed out after %v", s.cmd, s.timeout)
		}
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			msg := strings.TrimSpace(string(ee.Stderr))
			return model.RawSnapshot{}, fmt.Errorf("%s: %s", s.cmd, firstLine(msg))
		}
		return model.RawSnapshot{}, fmt.Errorf("run %s: %w", s.cmd, err)
	}

	lines := util.SplitLines(string(out))
	s.log.WithFields(log.Fields{"cmd": s.cmd, "lines": len(lines)}).Debug("snapshot captured")
	return model.RawSnapshot{At: at, Lines: lines}, nil
}

// Describe returns the full invocation for the header echo line.
func (s *CmdSource) Describe() string {
	if len(s.args) == 0 {
		return s.cmd
	}
	return s.cmd + " " + strings.Join(s.args, " ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
