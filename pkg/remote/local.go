package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	log "github.com/sirupsen/logrus"
)

// LocalExecutor runs commands on this machine. Commands are split with shell
// quoting rules and executed directly, without a shell, so pipes and
// redirections are not available.
type LocalExecutor struct{}

func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{}
}

// IsLocalHost reports whether host names this machine.
func IsLocalHost(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}

	return false
}

func (l *LocalExecutor) Host() string {
	return "localhost"
}

func (l *LocalExecutor) Run(ctx context.Context, command string) (string, error) {
	return run(ctx, command, nil)
}

func (l *LocalExecutor) Sudo(ctx context.Context, command string) (string, error) {
	return run(ctx, "sudo -n "+command, nil)
}

func (l *LocalExecutor) Put(ctx context.Context, r io.Reader, dest string, opts PutOptions) error {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}

	if !opts.UseSudo {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, mode); err != nil {
			return fmt.Errorf("failed transferring %s: %w", dest, err)
		}
		return os.Chmod(dest, mode)
	}

	if _, err := run(ctx, "sudo -n tee "+ShellQuote(dest), r); err != nil {
		return fmt.Errorf("failed transferring %s: %w", dest, err)
	}

	_, err := run(ctx, fmt.Sprintf("sudo -n chmod %s %s", modeString(mode), ShellQuote(dest)), nil)
	return err
}

func (l *LocalExecutor) Close() error {
	return nil
}

func run(ctx context.Context, command string, stdin io.Reader) (string, error) {
	log.Debugf("executing: %s", command)

	parts, err := shlex.Split(command)
	if err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("empty command")
	}

	proc := exec.CommandContext(ctx, parts[0], parts[1:]...)
	proc.Env = os.Environ()
	proc.Stdin = stdin

	var out bytes.Buffer
	proc.Stdout = &out
	proc.Stderr = &out

	err = proc.Run()
	log.Debugln(out.String())

	if err != nil {
		return out.String(), fmt.Errorf("command failed on localhost: %w\nCommand: %s\nOutput: %s", err, command, out.String())
	}

	return out.String(), nil
}
