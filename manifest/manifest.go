// Package manifest handles calc42.toml machine configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/calc42/vm"
)

// FileName is the name of the configuration file.
const FileName = "calc42.toml"

// Manifest represents a calc42.toml configuration.
type Manifest struct {
	Flags    SettingsConfig `toml:"settings"`
	Engine   EngineConfig   `toml:"engine"`
	Log      LogConfig      `toml:"log"`
	Programs ProgramsConfig `toml:"programs"`

	// Dir is the directory containing the calc42.toml file (set at load time).
	Dir string `toml:"-"`
}

// SettingsConfig holds the calculator flags.
type SettingsConfig struct {
	ReportSingularMatrix bool `toml:"report-singular-matrix"`
	MatrixOutOfRange     bool `toml:"matrix-out-of-range"`
	RangeErrorIgnore     bool `toml:"range-error-ignore"`
	BigStack             bool `toml:"big-stack"`
}

// EngineConfig sizes the machine.
type EngineConfig struct {
	StepBudget  int `toml:"step-budget"`
	MemoryLimit int `toml:"memory-limit"`
	Registers   int `toml:"registers"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// ProgramsConfig locates program listings.
type ProgramsConfig struct {
	Dirs []string `toml:"dirs"`
}

// Default returns the configuration used when no calc42.toml exists.
func Default() *Manifest {
	d := vm.DefaultSettings()
	return &Manifest{
		Flags: SettingsConfig{
			ReportSingularMatrix: d.ReportSingular,
			MatrixOutOfRange:     d.MatrixOutOfRange,
			RangeErrorIgnore:     d.RangeErrorIgnore,
			BigStack:             d.BigStack,
		},
		Engine: EngineConfig{
			StepBudget:  d.StepBudget,
			MemoryLimit: d.MemoryLimit,
			Registers:   d.Registers,
		},
		Programs: ProgramsConfig{Dirs: []string{"programs"}},
	}
}

// Load parses a calc42.toml file from the given directory. Keys that are
// absent keep their defaults; unknown keys are an error.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a calc42.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) validate() error {
	var errs []error
	if m.Engine.StepBudget < 1 {
		errs = append(errs, fmt.Errorf("engine.step-budget must be positive, got %d", m.Engine.StepBudget))
	}
	if m.Engine.MemoryLimit < 0 {
		errs = append(errs, fmt.Errorf("engine.memory-limit must not be negative, got %d", m.Engine.MemoryLimit))
	}
	if m.Engine.Registers < 0 || m.Engine.Registers > 9999 {
		errs = append(errs, fmt.Errorf("engine.registers out of range: %d", m.Engine.Registers))
	}
	return errors.Join(errs...)
}

// Settings returns the machine settings described by the manifest.
func (m *Manifest) Settings() vm.Settings {
	return vm.Settings{
		ReportSingular:   m.Flags.ReportSingularMatrix,
		MatrixOutOfRange: m.Flags.MatrixOutOfRange,
		RangeErrorIgnore: m.Flags.RangeErrorIgnore,
		BigStack:         m.Flags.BigStack,
		StepBudget:       m.Engine.StepBudget,
		MemoryLimit:      m.Engine.MemoryLimit,
		Registers:        m.Engine.Registers,
	}
}

// ProgramDirPaths returns absolute paths for the configured program
// directories.
func (m *Manifest) ProgramDirPaths() []string {
	var paths []string
	for _, d := range m.Programs.Dirs {
		if filepath.IsAbs(d) {
			paths = append(paths, d)
			continue
		}
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// FindProgram looks for NAME.42s in the program directories.
func (m *Manifest) FindProgram(name string) (string, error) {
	for _, dir := range m.ProgramDirPaths() {
		path := filepath.Join(dir, name+".42s")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("program %s not found in %s", name, strings.Join(m.Programs.Dirs, ", "))
}
