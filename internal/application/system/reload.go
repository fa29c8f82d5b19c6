package system

import (
	"errors"
	"fmt"
	"log"

	"github.com/ertsnom99/plateformer-sub000/internal/ecs"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/script"
)

// Reloader applies changed config files to a running world.
type Reloader struct {
	Loader  *config.Loader
	World   *ecs.World
	Scripts *ScriptDriver

	// Tuning is the last tuning that loaded and applied cleanly.
	Tuning *config.TuningConfig
}

// Apply reloads whatever paths refer to: the tuning file is re-read and
// pushed into live characters, scripts are recompiled. Other paths are
// ignored. A tuning that fails to load leaves the world untouched. It
// returns whether the tuning changed.
func (r *Reloader) Apply(paths []string) (bool, error) {
	var errs []error
	tuningChanged := false
	tuningDone := false

	for _, p := range paths {
		switch {
		case config.IsTuningFile(p):
			if tuningDone {
				continue
			}
			tuningDone = true
			if err := r.reloadTuning(); err != nil {
				errs = append(errs, err)
				continue
			}
			tuningChanged = true
			log.Printf("Tuning reloaded")

		case script.IsScriptFile(p) && r.Scripts != nil:
			name := script.NameOf(p)
			if err := r.Scripts.Reload(name); err != nil {
				errs = append(errs, fmt.Errorf("failed to reload script %s: %w", name, err))
				continue
			}
			log.Printf("Script %s reloaded", name)
		}
	}
	return tuningChanged, errors.Join(errs...)
}

func (r *Reloader) reloadTuning() error {
	tuning, err := r.Loader.LoadTuning()
	if err != nil {
		return fmt.Errorf("failed to reload tuning: %w", err)
	}
	if err := ApplyTuning(r.World, tuning); err != nil {
		return err
	}
	r.Tuning = tuning
	return nil
}
