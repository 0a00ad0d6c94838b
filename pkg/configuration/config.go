package configuration

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"k8s.io/client-go/util/homedir"
)

const (
	DefaultClusterName    = "janus"
	DefaultConfigFileName = ".janusops.toml"
)

// DefaultRegions are the EC2 regions the cluster spans unless overridden.
var DefaultRegions = []string{
	"us-east-1",
	"us-west-2",
	"eu-west-1",
	"ap-northeast-1",
}

// DefaultAllowedCIDRs lists the static address ranges allowed to contact the instances.
var DefaultAllowedCIDRs = []string{"128.122.140.0/24"}

type Config struct {
	Cluster   Cluster
	AWS       AWS
	Inventory Inventory
	SSH       SSH
	NFS       NFS
}

type Cluster struct {
	Name    string `toml:"name"`
	Leader  string `toml:"leader"`
	NFSHome string `toml:"nfs-home"`
}

type AWS struct {
	Regions          []string `toml:"regions"`
	AllowedCIDRs     []string `toml:"allowed-cidrs"`
	GroupDescription string   `toml:"group-description"`
}

type Inventory struct {
	Provider string              `toml:"provider"`
	TagKey   string              `toml:"tag-key"`
	TagValue string              `toml:"tag-value"`
	Static   map[string][]string `toml:"static"`
}

type SSH struct {
	User               string `toml:"user"`
	Port               int    `toml:"port"`
	PrivateKey         string `toml:"private-key"`
	DialTimeoutSeconds int    `toml:"dial-timeout-seconds"`
	Parallelism        int    `toml:"parallelism"`
	RebootWaitSeconds  int    `toml:"reboot-wait-seconds"`
}

type NFS struct {
	ExportOptions string `toml:"export-options"`
	MountPoint    string `toml:"mount-point"`
	TemplateDir   string `toml:"template-dir"`
}

func (s *SSH) DialTimeout() time.Duration {
	return time.Duration(s.DialTimeoutSeconds) * time.Second
}

func (s *SSH) RebootWait() time.Duration {
	return time.Duration(s.RebootWaitSeconds) * time.Second
}

// GetPrivateKeyPath expands a leading ~ in the configured key path.
func (s *SSH) GetPrivateKeyPath() string {
	if strings.HasPrefix(s.PrivateKey, "~/") {
		return filepath.Join(homedir.HomeDir(), s.PrivateKey[2:])
	}

	return s.PrivateKey
}

// GroupName returns the deterministic security group name for a region.
func (c *Config) GroupName(region string) string {
	return fmt.Sprintf("sg_%s_%s", c.Cluster.Name, region)
}

// GetConfigPath resolves the configuration file location: the explicit path,
// then $JANUSOPS_CONFIG, then a file in the home directory.
func GetConfigPath(path string) string {
	if path != "" {
		return path
	}

	if p := os.Getenv("JANUSOPS_CONFIG"); p != "" {
		return p
	}

	return filepath.Join(homedir.HomeDir(), DefaultConfigFileName)
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Cluster.Name == "" {
		c.Cluster.Name = DefaultClusterName
	}
	if c.Cluster.NFSHome == "" {
		c.Cluster.NFSHome = "/export/" + c.Cluster.Name
	}
	if len(c.AWS.Regions) == 0 {
		c.AWS.Regions = append([]string{}, DefaultRegions...)
	}
	if c.AWS.AllowedCIDRs == nil {
		c.AWS.AllowedCIDRs = append([]string{}, DefaultAllowedCIDRs...)
	}
	if c.AWS.GroupDescription == "" {
		c.AWS.GroupDescription = c.Cluster.Name + " security group"
	}
	if c.Inventory.Provider == "" {
		c.Inventory.Provider = "ec2"
	}
	if c.Inventory.TagKey == "" {
		c.Inventory.TagKey = "cluster"
	}
	if c.Inventory.TagValue == "" {
		c.Inventory.TagValue = c.Cluster.Name
	}
	if c.SSH.User == "" {
		c.SSH.User = "ubuntu"
	}
	if c.SSH.Port == 0 {
		c.SSH.Port = 22
	}
	if c.SSH.PrivateKey == "" {
		c.SSH.PrivateKey = "~/.ssh/id_rsa"
	}
	if c.SSH.DialTimeoutSeconds == 0 {
		c.SSH.DialTimeoutSeconds = 10
	}
	if c.SSH.Parallelism == 0 {
		c.SSH.Parallelism = 10
	}
	if c.SSH.RebootWaitSeconds == 0 {
		c.SSH.RebootWaitSeconds = 300
	}
	if c.NFS.ExportOptions == "" {
		c.NFS.ExportOptions = "(rw,fsid=0,insecure,no_subtree_check,async)"
	}
	if c.NFS.MountPoint == "" {
		c.NFS.MountPoint = "/mnt"
	}
}

// Validate checks the values that would otherwise only fail once AWS or a
// remote host rejects them.
func (c *Config) Validate() error {
	for _, cidr := range c.AWS.AllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("configuration: aws.allowed-cidrs: %w", err)
		}
	}

	if c.Cluster.Leader != "" && net.ParseIP(c.Cluster.Leader) == nil {
		return fmt.Errorf("configuration: cluster.leader %q is not an IP address", c.Cluster.Leader)
	}

	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("configuration: ssh.port %d out of range", c.SSH.Port)
	}

	if c.SSH.Parallelism < 1 {
		return errors.New("configuration: ssh.parallelism must be positive")
	}

	return nil
}

// New loads the file at path. A missing file is only an error when the path
// was named explicitly.
func New(path string) (*Config, error) {
	var cfg Config

	_, err := toml.DecodeFile(GetConfigPath(path), &cfg)
	if err != nil {
		if !(path == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("configuration: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
