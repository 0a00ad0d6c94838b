// Package render fills in the configuration files written to cluster hosts.
// Templates are embedded and may be replaced by files of the same name in an
// override directory.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

type Name string

const (
	HostsAllow Name = "hosts.allow"
	HostsDeny  Name = "hosts.deny"
	Exports    Name = "exports"
	Fstab      Name = "fstab"
	Limits     Name = "limits.conf"
	SSHConfig  Name = "ssh_config"
)

//go:embed templates/*.tmpl
var embedded embed.FS

type HostsAllowData struct {
	IPs []string
}

type ExportsData struct {
	ExportDir string
	Options   string
	IPs       []string
}

type FstabData struct {
	ServerIP     string
	MountPoint   string
	MountOptions string
}

type LimitsData struct {
	Users  []string
	NoFile int
	NProc  int
}

type Renderer struct {
	overrideDir string

	mx    sync.Mutex
	cache map[Name]*template.Template
}

func New(overrideDir string) *Renderer {
	return &Renderer{
		overrideDir: overrideDir,
		cache:       make(map[Name]*template.Template),
	}
}

func (r *Renderer) Render(name Name, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.ToWriter(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (r *Renderer) ToWriter(w io.Writer, name Name, data any) error {
	t, err := r.template(name)
	if err != nil {
		return err
	}

	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("executing template %q: %w", name, err)
	}

	return nil
}

func (r *Renderer) template(name Name) (*template.Template, error) {
	r.mx.Lock()
	defer r.mx.Unlock()

	if t, ok := r.cache[name]; ok {
		return t, nil
	}

	text, err := r.load(name)
	if err != nil {
		return nil, err
	}

	t, err := template.New(string(name)).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %q: %w", name, err)
	}

	r.cache[name] = t

	return t, nil
}

func (r *Renderer) load(name Name) (string, error) {
	if r.overrideDir != "" {
		for _, fn := range []string{string(name) + ".tmpl", string(name)} {
			data, err := os.ReadFile(filepath.Join(r.overrideDir, fn))
			if err == nil {
				return string(data), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("reading template %q: %w", fn, err)
			}
		}
	}

	data, err := embedded.ReadFile("templates/" + string(name) + ".tmpl")
	if err != nil {
		return "", fmt.Errorf("unknown template %q", name)
	}

	return string(data), nil
}
