// Package remotetest provides an in-memory remote.Dialer for tests.
package remotetest

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"janusops/pkg/remote"
)

// Host records everything done to one fake host.
type Host struct {
	Name     string
	Commands []string
	Files    map[string]string
	SudoPut  map[string]bool
	Dials    int
}

// Dialer hands out executors that record into Hosts. Outputs and Errors are
// matched against the executed command by prefix; sudo commands are recorded
// and matched with a "sudo " prefix.
type Dialer struct {
	Outputs  map[string]string
	Errors   map[string]error
	DialErrs map[string]error
	// Handler, when set, is consulted before Outputs and Errors.
	Handler func(host, command string) (out string, handled bool, err error)

	mx    sync.Mutex
	hosts map[string]*Host
}

func NewDialer() *Dialer {
	return &Dialer{
		Outputs:  make(map[string]string),
		Errors:   make(map[string]error),
		DialErrs: make(map[string]error),
		hosts:    make(map[string]*Host),
	}
}

func (d *Dialer) Dial(_ context.Context, host string) (remote.Executor, error) {
	d.mx.Lock()
	defer d.mx.Unlock()

	if err := d.DialErrs[host]; err != nil {
		return nil, err
	}

	h := d.host(host)
	h.Dials++

	return &executor{d: d, h: h}, nil
}

// Host returns the record for name, creating an empty one if needed.
func (d *Dialer) Host(name string) *Host {
	d.mx.Lock()
	defer d.mx.Unlock()

	return d.host(name)
}

// Hosts returns the names of every host that was dialed, sorted.
func (d *Dialer) Hosts() []string {
	d.mx.Lock()
	defer d.mx.Unlock()

	names := make([]string, 0, len(d.hosts))
	for n, h := range d.hosts {
		if h.Dials > 0 {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	return names
}

func (d *Dialer) host(name string) *Host {
	h, ok := d.hosts[name]
	if !ok {
		h = &Host{Name: name, Files: make(map[string]string), SudoPut: make(map[string]bool)}
		d.hosts[name] = h
	}

	return h
}

func (d *Dialer) exec(h *Host, command string) (string, error) {
	d.mx.Lock()
	defer d.mx.Unlock()

	h.Commands = append(h.Commands, command)

	if d.Handler != nil {
		if out, ok, err := d.Handler(h.Name, command); ok {
			return out, err
		}
	}

	for prefix, err := range d.Errors {
		if strings.HasPrefix(command, prefix) {
			return "", err
		}
	}
	for prefix, out := range d.Outputs {
		if strings.HasPrefix(command, prefix) {
			return out, nil
		}
	}

	return "", nil
}

type executor struct {
	d *Dialer
	h *Host
}

func (e *executor) Host() string {
	return e.h.Name
}

func (e *executor) Run(_ context.Context, command string) (string, error) {
	return e.d.exec(e.h, command)
}

func (e *executor) Sudo(_ context.Context, command string) (string, error) {
	return e.d.exec(e.h, "sudo "+command)
}

func (e *executor) Put(_ context.Context, r io.Reader, dest string, opts remote.PutOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	if _, err := e.d.exec(e.h, "put "+dest); err != nil {
		return err
	}

	e.d.mx.Lock()
	defer e.d.mx.Unlock()
	e.h.Files[dest] = string(data)
	e.h.SudoPut[dest] = opts.UseSudo

	return nil
}

func (e *executor) Close() error {
	return nil
}
