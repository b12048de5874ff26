package kernel

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtsarkov/shiq/internal/rerrors"
)

// Config holds the four recognised options of §6 ("Configuration"). It is
// loaded from YAML (gopkg.in/yaml.v3), matching the encoding the teacher's
// own CUE-to-YAML marshalling uses throughout cuelang.org/go.
type Config struct {
	// TimeoutMillis is the cooperative timeout in milliseconds; 0 means
	// unlimited.
	TimeoutMillis int `yaml:"timeout"`

	// VerboseOutput enables informational diagnostics on stderr.
	VerboseOutput bool `yaml:"verboseOutput"`

	// UseRelevantOnly is decoded from the useRelevantOnly key and kept
	// here, but nothing reads it: internal/dag.Store always builds the
	// full DAG from every declared axiom, whatever its value.
	UseRelevantOnly bool `yaml:"useRelevantOnly"`

	// TopObjectRole, BottomObjectRole, TopDataRole, BottomDataRole name
	// the four distinguished roles (topBRole, botBRole, topDRole,
	// botDRole).
	TopObjectRole    string `yaml:"topBRole"`
	BottomObjectRole string `yaml:"botBRole"`
	TopDataRole      string `yaml:"topDRole"`
	BottomDataRole   string `yaml:"botDRole"`
}

// Timeout returns the configured timeout as a time.Duration, or 0
// (unlimited) unchanged.
func (c Config) Timeout() time.Duration {
	if c.TimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// DefaultConfig returns the options a fresh Kernel uses absent any
// configuration file: no timeout, quiet, full DAG construction, and the
// role system's own default distinguished-role names.
func DefaultConfig() Config {
	return Config{
		TopObjectRole:    "topObjectRole",
		BottomObjectRole: "bottomObjectRole",
		TopDataRole:      "topDataRole",
		BottomDataRole:   "bottomDataRole",
	}
}

// LoadConfig decodes YAML from r over DefaultConfig, so a file that
// overrides only one option leaves the rest at their defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, Newf(KindUnsupported, rerrors.NoAxiom, "invalid configuration: %v", err)
	}
	return cfg, nil
}

// LoadConfigFile opens path and decodes it as Config.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, Newf(KindUnsupported, rerrors.NoAxiom, "opening configuration: %v", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
