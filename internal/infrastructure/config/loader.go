package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// TuningFiles are the tuning file names LoadTuning looks for, in order.
var TuningFiles = []string{"tuning.yaml", "tuning.yml", "tuning.json"}

// GameConfig holds all loaded configurations
type GameConfig struct {
	Tuning *TuningConfig
	Stage  *StageConfig
}

// Loader loads game configuration using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// BasePath returns the directory the loader was created for.
func (l *Loader) BasePath() string {
	return l.basePath
}

// FS returns the filesystem the loader reads from
func (l *Loader) FS() fs.FS {
	return l.fsys
}

// LoadTuning loads the first tuning file found.
func (l *Loader) LoadTuning() (*TuningConfig, error) {
	for _, name := range TuningFiles {
		if _, err := fs.Stat(l.fsys, name); err == nil {
			return l.LoadTuningFile(name)
		}
	}
	return nil, fmt.Errorf("failed to find tuning file (%s): %w", strings.Join(TuningFiles, ", "), fs.ErrNotExist)
}

// LoadTuningFile loads a tuning file, YAML or JSON by extension, on top of
// the defaults and validates it.
func (l *Loader) LoadTuningFile(name string) (*TuningConfig, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	cfg := DefaultTuning()
	if err := decode(name, data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	return &cfg, nil
}

// LoadStage loads a stage JSON file
func (l *Loader) LoadStage(name string) (*StageConfig, error) {
	p := "stages/" + name + ".json"
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage %s: %w", name, err)
	}

	var cfg StageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse stage %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stage %s: %w", name, err)
	}

	return &cfg, nil
}

// LoadAll loads the tuning and the named stage
func (l *Loader) LoadAll(stage string) (*GameConfig, error) {
	tuning, err := l.LoadTuning()
	if err != nil {
		return nil, err
	}

	st, err := l.LoadStage(stage)
	if err != nil {
		return nil, err
	}

	return &GameConfig{
		Tuning: tuning,
		Stage:  st,
	}, nil
}

// IsTuningFile reports whether p names a tuning file.
func IsTuningFile(p string) bool {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	for _, name := range TuningFiles {
		if base == name {
			return true
		}
	}
	return false
}

var errUnknownFormat = errors.New("unknown config format")

func decode(name string, data []byte, out any) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".json":
		return json.Unmarshal(data, out)
	default:
		return fmt.Errorf("%w: %s", errUnknownFormat, name)
	}
}
