package config

import "time"

// CLIConfig is the dew-cli settings file. Zero fields leave the flag
// default alone.
type CLIConfig struct {
	Server   string        `yaml:"server"`
	Output   string        `yaml:"output"`
	CAFile   string        `yaml:"ca_file"`
	Insecure bool          `yaml:"insecure"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Values returns the settings as flag name to flag value, skipping
// unset ones.
func (c *CLIConfig) Values() map[string]string {
	v := make(map[string]string)
	if c.Server != "" {
		v["server"] = c.Server
	}
	if c.Output != "" {
		v["output"] = c.Output
	}
	if c.CAFile != "" {
		v["ca-file"] = c.CAFile
	}
	if c.Insecure {
		v["insecure"] = "true"
	}
	if c.Timeout > 0 {
		v["timeout"] = c.Timeout.String()
	}
	return v
}
