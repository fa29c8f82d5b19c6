// Command sandbox opens a stage to try out character movement.
package main

import (
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ertsnom99/plateformer-sub000/internal/application/game"
	"github.com/ertsnom99/plateformer-sub000/internal/application/replay"
	"github.com/ertsnom99/plateformer-sub000/internal/application/scene/sandbox"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/config"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/script"
	"github.com/ertsnom99/plateformer-sub000/internal/infrastructure/watch"
)

func isConfigFile(p string) bool {
	return config.IsTuningFile(p) || script.IsScriptFile(p)
}

// openLoader reads configs from dir, or from the embedded copy when dir is
// empty. Only a directory on disk is watched for changes.
func openLoader(dir string) (*config.Loader, *watch.Watcher, error) {
	if dir == "" {
		fsys, err := fs.Sub(configFS, "configs")
		if err != nil {
			return nil, nil, err
		}
		return config.NewFSLoader(fsys, "configs"), nil, nil
	}

	dirs := []string{dir}
	if info, err := os.Stat(filepath.Join(dir, "scripts")); err == nil && info.IsDir() {
		dirs = append(dirs, filepath.Join(dir, "scripts"))
	}
	w, err := watch.New(isConfigFile, watch.DefaultDebounce, dirs...)
	if err != nil {
		return nil, nil, err
	}
	return config.NewLoader(dir), w, nil
}

func main() {
	configDir := flag.String("config", "", "Config directory to load and watch (default: embedded configs)")
	stageName := flag.String("stage", "", "Stage to load (default: demo, or the replay's stage)")
	recordFlag := flag.String("record", "", "Record input to file (e.g., -record replay.json)")
	replayFlag := flag.String("replay", "", "Play back a recorded session")
	scriptFlag := flag.String("script", "", "Drive the player with scripts/<name>.tengo")
	flag.Parse()

	if *replayFlag != "" && (*scriptFlag != "" || *recordFlag != "") {
		log.Fatalf("-replay cannot be combined with -script or -record")
	}

	var data *replay.ReplayData
	if *replayFlag != "" {
		var err error
		data, err = replay.LoadReplay(*replayFlag)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
	}

	name := *stageName
	switch {
	case name == "" && data != nil:
		name = data.Stage
	case name == "":
		name = "demo"
	}
	if data != nil && data.Stage != name {
		log.Printf("Replay was recorded on %s, playing it on %s", data.Stage, name)
	}

	loader, watcher, err := openLoader(*configDir)
	if err != nil {
		log.Fatalf("Failed to open configs: %v", err)
	}
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
		log.Printf("Watching %s for changes", loader.BasePath())
	}

	cfg, err := loader.LoadAll(name)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Loaded stage %s from %s", name, loader.BasePath())

	s, err := sandbox.New(sandbox.Options{
		Loader:     loader,
		Config:     cfg,
		RecordPath: *recordFlag,
		Replay:     data,
		Script:     *scriptFlag,
		Watcher:    watcher,
	})
	if err != nil {
		log.Fatalf("Failed to create sandbox: %v", err)
	}

	display := cfg.Tuning.Display
	g := game.New(s, display.ScreenWidth, display.ScreenHeight)
	g.SetDT(1 / float64(display.Framerate))
	defer g.Close()

	ebiten.SetWindowSize(display.ScreenWidth*display.Scale, display.ScreenHeight*display.Scale)
	ebiten.SetWindowTitle("Platformer Sandbox")
	ebiten.SetTPS(display.Framerate)

	if err := ebiten.RunGame(g); err != nil {
		g.Close()
		log.Fatal(err)
	}
}
