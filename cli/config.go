// Package cli holds what the commands share: the smol.toml configuration,
// logging setup and program loading.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"go.creack.net/smol/smolfile"
	"go.creack.net/smol/sysbridge"
)

// ConfigFile is the configuration file name.
const ConfigFile = "smol.toml"

// Config represents a smol.toml file.
type Config struct {
	VM  VMConfig  `toml:"vm"`
	Log LogConfig `toml:"log"`
	Asm AsmConfig `toml:"asm"`

	// Path of the loaded file, empty when using the defaults.
	Path string `toml:"-"`
}

// VMConfig configures the machine.
type VMConfig struct {
	Trace  bool   `toml:"trace"`
	Bridge string `toml:"bridge"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// AsmConfig configures the assembler outputs.
type AsmConfig struct {
	OutputExt string `toml:"output-ext"`
}

// DefaultConfig is used when no smol.toml is found.
func DefaultConfig() *Config {
	return &Config{
		VM:  VMConfig{Bridge: sysbridge.NameUnix},
		Log: LogConfig{Verbosity: 1},
		Asm: AsmConfig{OutputExt: smolfile.Ext},
	}
}

// Load parses a smol.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", path, undecoded)
	}
	cfg.Path = path

	switch cfg.VM.Bridge {
	case sysbridge.NameUnix, sysbridge.NameStdio:
	default:
		return nil, fmt.Errorf("%s: unknown bridge %q", path, cfg.VM.Bridge)
	}
	if cfg.Asm.OutputExt == "" {
		cfg.Asm.OutputExt = smolfile.Ext
	}
	return cfg, nil
}

// FindAndLoad walks up from startDir to find a smol.toml file. Returns
// the defaults when there is none.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", startDir, err)
	}
	for {
		cfg, err := Load(dir)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultConfig(), nil
		}
		dir = parent
	}
}
