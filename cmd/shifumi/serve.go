package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/ayusman/shifumi/internal/app"
	"github.com/ayusman/shifumi/internal/capture"
	"github.com/ayusman/shifumi/internal/classifier"
	"github.com/ayusman/shifumi/internal/config"
	"github.com/ayusman/shifumi/internal/detector"
	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/gesture"
	"github.com/ayusman/shifumi/internal/region"
	"github.com/ayusman/shifumi/internal/server"
	"github.com/ayusman/shifumi/internal/store"
	"github.com/ayusman/shifumi/internal/tray"
)

func runServeCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	fmt.Println("Shifumi - Rock Paper Scissors")

	st, err := store.New(s.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer st.Close()

	machine, err := game.NewMachine(s.Game())
	if err != nil {
		return err
	}
	defer machine.Close()
	if machine.Snapshot().TotalRounds != s.Rounds {
		if err := machine.NewMatch(s.Rounds); err != nil {
			return err
		}
	}
	machine.OnMatchEnd(func(w game.Winner) {
		log.Printf("Match winner: %s", w)
	})

	appCfg, err := collaborators(s)
	if err != nil {
		return err
	}
	appCfg.Machine = machine
	appCfg.Extractor = region.NewExtractor(s.Vision())
	appCfg.Store = st
	appCfg.MotionThresh = s.MotionThreshold
	appCfg.IdleFPS = s.IdleFPS
	appCfg.ActiveFPS = s.ActiveFPS

	a, err := app.New(appCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer a.Stop()

	webDir := s.WebDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Game:      a,
	})

	if !serveTray {
		return srv.Run(ctx, s.Addr)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Run(ctx, s.Addr)
	}()

	t := tray.New()
	t.OnStartRound(func() { logCommand("start round", a.StartRound()) })
	t.OnNextRound(func() { logCommand("next round", a.NextRound()) })
	t.OnOpen(func() { openBrowser(browserURL(s.Addr)) })
	t.OnQuit(stop)

	updates, cancel := a.Subscribe()
	defer cancel()
	go t.Watch(updates)
	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	// systray needs the main goroutine.
	t.Run()
	stop()
	return <-errc
}

// collaborators builds the camera, localizer and model, or synthetic
// stand-ins for them in mock mode.
func collaborators(s config.Settings) (app.Config, error) {
	if serveMock {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(90, 120, 150, 0), 480, 640, gocv.MatTypeCV8UC3)
		cam := capture.NewMockCamera([]gocv.Mat{frame}, true)
		cam.SetDisplaySize(s.Display)

		det := detector.NewMockDetector()
		det.SetHands(detector.RockLandmarks())

		model := classifier.NewMockClassifier(gesture.Classification{Label: gesture.Rock, Confidence: 0.9})
		return app.Config{
			Camera:   cam,
			Detector: det,
			Model:    func() (classifier.Classifier, error) { return model, nil },
		}, nil
	}

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		return app.Config{}, fmt.Errorf("%w: %v", detector.ErrLocalizerInit, err)
	}

	modelPath, labels, size := s.ModelPath, s.Labels, s.TargetSize
	return app.Config{
		Camera:   capture.NewCamera(s.CameraDevice, capture.WithDisplaySize(s.Display)),
		Detector: det,
		Model: func() (classifier.Classifier, error) {
			return classifier.NewDNNClassifier(modelPath, labels, size)
		},
	}, nil
}

func logCommand(name string, err error) {
	if err != nil {
		log.Printf("tray: %s: %v", name, err)
	}
}

func browserURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and the user data directory.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(config.XDGDataHome(), "shifumi", "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
