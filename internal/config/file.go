// Package config holds the YAML cluster registry read by topic-scout: connection and security
// settings per cluster plus the name of the cluster this process treats as local.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalClusterEnv overrides FileConfig.LocalCluster when set.
const LocalClusterEnv = "TOPIC_SCOUT_LOCAL_CLUSTER"

// ClusterConfig holds cluster connectivity and security configuration.
type ClusterConfig struct {
	Name     string            `yaml:"name" json:"name"`
	Brokers  []string          `yaml:"brokers" json:"brokers"`
	ClientID string            `yaml:"client_id,omitempty" json:"client_id,omitempty"`
	TLS      *TLSConfig        `yaml:"tls,omitempty" json:"tls,omitempty"`
	SASL     *SASLConfig       `yaml:"sasl,omitempty" json:"sasl,omitempty"`
	AWS      *AWSConfig        `yaml:"aws,omitempty" json:"aws,omitempty"`
	Options  map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// TLSConfig holds TLS related fields.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	CAFile             string `yaml:"ca_file,omitempty" json:"ca_file,omitempty"`
	CertFile           string `yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile            string `yaml:"key_file,omitempty" json:"key_file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty" json:"insecure_skip_verify,omitempty"`
}

// SASLConfig holds SASL configuration. Credentials may be provided inline or via env var names.
type SASLConfig struct {
	Mechanism   string `yaml:"mechanism,omitempty" json:"mechanism,omitempty"` // PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Username    string `yaml:"username,omitempty" json:"username,omitempty"`
	Password    string `yaml:"password,omitempty" json:"-"`
	UsernameEnv string `yaml:"username_env,omitempty" json:"username_env,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty" json:"password_env,omitempty"`
}

// AWSConfig holds AWS MSK IAM settings.
type AWSConfig struct {
	IAM             bool   `yaml:"iam,omitempty" json:"iam,omitempty"`
	Region          string `yaml:"region,omitempty" json:"region,omitempty"`
	AccessKeyEnv    string `yaml:"access_key_env,omitempty" json:"access_key_env,omitempty"`
	SecretKeyEnv    string `yaml:"secret_key_env,omitempty" json:"secret_key_env,omitempty"`
	SessionTokenEnv string `yaml:"session_token_env,omitempty" json:"session_token_env,omitempty"`
}

// FileConfig is the root of the YAML file.
type FileConfig struct {
	LocalCluster string          `yaml:"local_cluster,omitempty" json:"local_cluster,omitempty"`
	Clusters     []ClusterConfig `yaml:"clusters" json:"clusters"`
}

// ReadConfig parses the YAML file at path.
func ReadConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// WriteConfig serialises cfg to path.
func WriteConfig(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// LocalClusterName resolves which configured cluster is the local one: the env override first,
// then local_cluster, then the first cluster in the file. It returns "" when nothing is configured.
func (f FileConfig) LocalClusterName() string {
	if v := strings.TrimSpace(os.Getenv(LocalClusterEnv)); v != "" {
		return v
	}
	if f.LocalCluster != "" {
		return f.LocalCluster
	}
	if len(f.Clusters) > 0 {
		return f.Clusters[0].Name
	}
	return ""
}

// GetAuthType returns a human-readable authentication type based on the cluster config
func (c *ClusterConfig) GetAuthType() string {
	if c.AWS != nil && c.AWS.IAM {
		return "AWS IAM"
	}

	if c.SASL != nil && c.SASL.Mechanism != "" {
		if c.TLS != nil && c.TLS.Enabled {
			return "SASL/" + c.SASL.Mechanism + " + TLS"
		}
		return "SASL/" + c.SASL.Mechanism
	}

	if c.TLS != nil && c.TLS.Enabled {
		if c.TLS.CertFile != "" && c.TLS.KeyFile != "" {
			return "mTLS"
		}
		return "TLS"
	}

	return "PLAINTEXT"
}
