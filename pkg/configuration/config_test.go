package configuration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patchEnvironment(valsToSet map[string]string) func() {
	current := make(map[string]string)
	for k, v := range valsToSet {
		current[k] = os.Getenv(k)
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range current {
			os.Setenv(k, v)
		}
	}
}

func createTempFile(data string) (string, error) {
	f, err := os.CreateTemp("", "janusops*.toml")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if data != "" {
		if _, wErr := f.WriteString(data); wErr != nil {
			return "", wErr
		}
	}
	return f.Name(), nil
}

func TestGetConfigPath(t *testing.T) {
	tests := map[string]struct {
		path         string
		envVars      map[string]string
		expectedPath string
	}{
		"returns explicit path if set": {
			"my/janusops.toml",
			nil,
			"my/janusops.toml",
		},
		"returns value from JANUSOPS_CONFIG env var if set": {
			"",
			map[string]string{"JANUSOPS_CONFIG": "env/var/janusops.toml"},
			"env/var/janusops.toml",
		},
		"returns value from homedir": {
			"",
			map[string]string{"JANUSOPS_CONFIG": "", "HOME": "/foobar"},
			"/foobar/.janusops.toml",
		},
	}

	for name, test := range tests {
		restore := patchEnvironment(test.envVars)

		assert.Equal(t, test.expectedPath, GetConfigPath(test.path), name)
		restore()
	}
}

func TestConfig_New(t *testing.T) {
	tests := map[string]struct {
		data        string
		expectedErr string
		verify      func(*testing.T, *Config)
	}{
		"applies defaults to an empty file": {
			"",
			"",
			func(t *testing.T, cfg *Config) {
				assert.Equal(t, "janus", cfg.Cluster.Name)
				assert.Equal(t, "/export/janus", cfg.Cluster.NFSHome)
				assert.Equal(t, DefaultRegions, cfg.AWS.Regions)
				assert.Equal(t, []string{"128.122.140.0/24"}, cfg.AWS.AllowedCIDRs)
				assert.Equal(t, "janus security group", cfg.AWS.GroupDescription)
				assert.Equal(t, "ec2", cfg.Inventory.Provider)
				assert.Equal(t, 22, cfg.SSH.Port)
				assert.Equal(t, "ubuntu", cfg.SSH.User)
				assert.Equal(t, "/mnt", cfg.NFS.MountPoint)
			},
		},
		"reads sections from file": {
			"[cluster]\nleader = \"1.2.3.4\"\n\n[aws]\nregions = [\"us-east-1\"]\nallowed-cidrs = [\"9.9.9.9/24\"]\n\n" +
				"[inventory]\nprovider = \"static\"\n\n[inventory.static]\nus-east-1 = [\"1.2.3.4\", \"1.2.3.5\"]\n\n" +
				"[ssh]\nuser = \"admin\"\nparallelism = 2\n",
			"",
			func(t *testing.T, cfg *Config) {
				assert.Equal(t, "1.2.3.4", cfg.Cluster.Leader)
				assert.Equal(t, []string{"us-east-1"}, cfg.AWS.Regions)
				assert.Equal(t, []string{"9.9.9.9/24"}, cfg.AWS.AllowedCIDRs)
				assert.Equal(t, "static", cfg.Inventory.Provider)
				assert.Equal(t, map[string][]string{"us-east-1": {"1.2.3.4", "1.2.3.5"}}, cfg.Inventory.Static)
				assert.Equal(t, "admin", cfg.SSH.User)
				assert.Equal(t, 2, cfg.SSH.Parallelism)
			},
		},
		"keeps an explicitly empty allow-list": {
			"[aws]\nallowed-cidrs = []\n",
			"",
			func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.AWS.AllowedCIDRs)
			},
		},
		"returns error for invalid cidr": {
			"[aws]\nallowed-cidrs = [\"not-a-cidr\"]\n",
			"configuration: aws.allowed-cidrs: invalid CIDR address: not-a-cidr",
			nil,
		},
		"returns error for invalid leader": {
			"[cluster]\nleader = \"leader-host\"\n",
			"configuration: cluster.leader \"leader-host\" is not an IP address",
			nil,
		},
	}

	for name, test := range tests {
		filePath, fErr := createTempFile(test.data)
		require.NoError(t, fErr, name)

		cfg, err := New(filePath)
		os.Remove(filePath)

		if test.expectedErr != "" {
			assert.EqualError(t, err, test.expectedErr, name)
			assert.Nil(t, cfg, name)
			continue
		}

		require.NoError(t, err, name)
		test.verify(t, cfg)
	}
}

func TestConfig_NewMissingFile(t *testing.T) {
	_, err := New("does not exist")
	assert.EqualError(t, err, "configuration: open does not exist: no such file or directory")

	restore := patchEnvironment(map[string]string{"JANUSOPS_CONFIG": "", "HOME": t.TempDir()})
	defer restore()

	cfg, err := New("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_GroupName(t *testing.T) {
	assert.Equal(t, "sg_janus_us-east-1", Default().GroupName("us-east-1"))
}

func TestSSH_GetPrivateKeyPath(t *testing.T) {
	restore := patchEnvironment(map[string]string{"HOME": "/foobar"})
	defer restore()

	assert.Equal(t, "/foobar/.ssh/id_rsa", (&SSH{PrivateKey: "~/.ssh/id_rsa"}).GetPrivateKeyPath())
	assert.Equal(t, "/keys/id", (&SSH{PrivateKey: "/keys/id"}).GetPrivateKeyPath())
}
