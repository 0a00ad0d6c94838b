package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	tests := map[string]struct {
		name     Name
		data     any
		expected string
	}{
		"renders hosts.allow with every ip": {
			HostsAllow,
			&HostsAllowData{IPs: []string{"1.2.3.4", "5.6.7.8"}},
			"portmap lockd mountd rquotad statd nfsd : 127.0.0.1 1.2.3.4 5.6.7.8\n",
		},
		"renders exports with options per host": {
			Exports,
			&ExportsData{ExportDir: "/export", Options: "(rw,async)", IPs: []string{"1.2.3.4", "5.6.7.8"}},
			"/export 1.2.3.4(rw,async) 5.6.7.8(rw,async)\n",
		},
		"renders fstab with default mount options": {
			Fstab,
			&FstabData{ServerIP: "1.2.3.4", MountPoint: "/mnt"},
			"1.2.3.4:/\t/mnt\tnfs4\trw,hard,intr,_netdev\t0 0\n",
		},
		"renders limits for each user": {
			Limits,
			&LimitsData{Users: []string{"*", "root"}, NoFile: 65536, NProc: 4096},
			"root\thard\tnproc\t4096\n",
		},
		"renders ssh config": {
			SSHConfig,
			nil,
			"StrictHostKeyChecking no",
		},
	}

	r := New("")
	for name, test := range tests {
		out, err := r.Render(test.name, test.data)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(out, "# Managed by janusops.\n"), name)
		assert.Contains(t, out, test.expected, name)
	}
}

func TestRenderer_RenderUnknownTemplate(t *testing.T) {
	_, err := New("").Render(Name("nope"), nil)
	assert.EqualError(t, err, `unknown template "nope"`)
}

func TestRenderer_OverrideDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hosts.deny"), []byte("ALL: {{ \"ALL\" | lower }}\n"), 0o644))

	r := New(dir)

	out, err := r.Render(HostsDeny, nil)
	require.NoError(t, err)
	assert.Equal(t, "ALL: all\n", out)

	out, err = r.Render(SSHConfig, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "UserKnownHostsFile /dev/null")
}

func TestRenderer_ParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fstab.tmpl"), []byte("{{ .ServerIP "), 0o644))

	_, err := New(dir).Render(Fstab, &FstabData{})
	assert.ErrorContains(t, err, `parsing template "fstab"`)
}
