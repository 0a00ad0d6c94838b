// Package remote runs commands and writes files on cluster hosts.
package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs commands on a single host.
type Executor interface {
	Host() string
	// Run executes command as the login user and returns combined output.
	Run(ctx context.Context, command string) (string, error)
	// Sudo executes command as root.
	Sudo(ctx context.Context, command string) (string, error)
	// Put writes the content of r to dest.
	Put(ctx context.Context, r io.Reader, dest string, opts PutOptions) error
	Close() error
}

type PutOptions struct {
	UseSudo bool
	Mode    os.FileMode
}

// Dialer opens an Executor for a host.
type Dialer interface {
	Dial(ctx context.Context, host string) (Executor, error)
}

type DialerFunc func(ctx context.Context, host string) (Executor, error)

func (f DialerFunc) Dial(ctx context.Context, host string) (Executor, error) {
	return f(ctx, host)
}

// ShellQuote wraps s in single quotes for a POSIX shell.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}

	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// putCommand is the remote shell command that stores stdin at dest.
func putCommand(dest string, opts PutOptions) string {
	q := ShellQuote(dest)

	var cmd string
	if opts.UseSudo {
		cmd = "sudo tee " + q + " > /dev/null"
	} else {
		cmd = "cat > " + q
	}

	if opts.Mode != 0 {
		chmod := "chmod " + modeString(opts.Mode) + " " + q
		if opts.UseSudo {
			chmod = "sudo " + chmod
		}
		cmd += " && " + chmod
	}

	return cmd
}

func modeString(m os.FileMode) string {
	return fmt.Sprintf("%04o", m.Perm())
}
