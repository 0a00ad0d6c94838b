package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"
)

const defaultDialTimeout = 10 * time.Second

type SSHConfig struct {
	User        string
	Port        int
	PrivateKey  []byte
	DialTimeout time.Duration

	// HostKeyCallback verifies host keys. Cluster hosts are recreated often,
	// so when nil any key is accepted.
	HostKeyCallback ssh.HostKeyCallback
}

// SSHDialer opens SSH executors with key authentication. Hosts named
// localhost are run through a LocalExecutor instead.
type SSHDialer struct {
	cfg    SSHConfig
	signer ssh.Signer
}

func NewSSHDialer(cfg SSHConfig) (*SSHDialer, error) {
	if cfg.User == "" {
		return nil, errors.New("ssh: user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, errors.New("ssh: private key cannot be empty")
	}

	signer, err := ssh.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("ssh: failed to parse private key: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.HostKeyCallback == nil {
		cfg.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec
	}

	return &SSHDialer{cfg: cfg, signer: signer}, nil
}

func (d *SSHDialer) Dial(ctx context.Context, host string) (Executor, error) {
	if IsLocalHost(host) {
		return NewLocalExecutor(), nil
	}

	addr := net.JoinHostPort(host, strconv.Itoa(d.cfg.Port))
	config := &ssh.ClientConfig{
		User:            d.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(d.signer)},
		HostKeyCallback: d.cfg.HostKeyCallback,
		Timeout:         d.cfg.DialTimeout,
	}

	dialer := &net.Dialer{Timeout: d.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ssh: failed to dial %s: %w", addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh: handshake with %s failed: %w", addr, err)
	}

	log.Debugf("connected to %s as %s", addr, d.cfg.User)

	return &SSHExecutor{host: host, client: ssh.NewClient(c, chans, reqs)}, nil
}

// SSHExecutor runs each command in its own session over one connection.
type SSHExecutor struct {
	host   string
	client *ssh.Client
}

func (s *SSHExecutor) Host() string {
	return s.host
}

func (s *SSHExecutor) Run(ctx context.Context, command string) (string, error) {
	return s.run(ctx, command, nil)
}

func (s *SSHExecutor) Sudo(ctx context.Context, command string) (string, error) {
	return s.run(ctx, "sudo -n sh -c "+ShellQuote(command), nil)
}

func (s *SSHExecutor) Put(ctx context.Context, r io.Reader, dest string, opts PutOptions) error {
	if _, err := s.run(ctx, putCommand(dest, opts), r); err != nil {
		return fmt.Errorf("failed transferring %s: %w", dest, err)
	}

	return nil
}

func (s *SSHExecutor) Close() error {
	return s.client.Close()
}

func (s *SSHExecutor) run(ctx context.Context, command string, stdin io.Reader) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", s.host, err)
	}
	defer session.Close()

	session.Stdin = stdin
	log.Debugf("[%s] run: %s", s.host, command)

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := session.CombinedOutput(command)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return string(res.out), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
				s.host, res.err, command, string(res.out))
		}
		return string(res.out), nil
	}
}
