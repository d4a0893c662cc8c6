package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultChassisID   = "1"
	DefaultIPMICommand = "ipmitool"
)

var DefaultIPMIArgs = []string{"lan", "print"}

type Config struct {
	BMCScheme     string        `yaml:"scheme"`
	BMCTimeout    time.Duration `yaml:"timeout"`
	SSLVerify     bool          `yaml:"sslVerify"`
	User          string        `yaml:"user"`
	Pass          string        `yaml:"password"`
	Target        string        `yaml:"target"`
	ChassisIDs    []string      `yaml:"chassisIds"`
	IPMICommand   string        `yaml:"ipmiCommand"`
	IPMIArgs      []string      `yaml:"ipmiArgs"`
	StrictAddress bool          `yaml:"strictAddress"`
	SessionLogout bool          `yaml:"sessionLogout"`
}

var (
	config *Config
	once   sync.Once
)

func NewConfig(c *Config) {
	once.Do(func() {
		if c != nil {
			config = c
		} else {
			config = &Config{}
		}
		config.setDefaults()
	})
}

func GetConfig() *Config {
	if config != nil {
		return config
	}

	NewConfig(nil)
	return config
}

// LoadFile overlays the YAML document at path onto c. Keys present in the
// file replace whatever c already holds, keys left out are untouched.
func LoadFile(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("unable to parse config file %s: %w", path, err)
	}

	c.setDefaults()
	return nil
}

func (c *Config) setDefaults() {
	if c.BMCScheme == "" {
		c.BMCScheme = "https"
	}
	if c.BMCTimeout == 0 {
		c.BMCTimeout = 30 * time.Second
	}
	if len(c.ChassisIDs) == 0 {
		c.ChassisIDs = []string{DefaultChassisID}
	}
	if c.IPMICommand == "" {
		c.IPMICommand = DefaultIPMICommand
		if len(c.IPMIArgs) == 0 {
			c.IPMIArgs = DefaultIPMIArgs
		}
	}
}
