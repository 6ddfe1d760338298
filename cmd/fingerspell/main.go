package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/config"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/server"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/ayusman/fingerspell/internal/tray"
)

func main() {
	fmt.Println("Fingerspell - ASL Fingerspelling Recognition")

	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if cfg.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.StaticDir)
	}

	srvCfg := server.Config{
		StaticDir: cfg.StaticDir,
		Store:     st,
		StreamFPS: cfg.CameraFPS,
	}

	var application *app.App
	if cfg.CameraEnabled {
		camCfg := capture.DefaultConfig()
		camCfg.DeviceID = cfg.CameraID
		camCfg.FPS = cfg.CameraFPS
		camCfg.Mirror = cfg.CameraMirror

		application = app.New(app.Config{
			Store:  st,
			Camera: camCfg,
			Detector: detector.Config{
				MaxHands:      cfg.MaxHands,
				MinConfidence: cfg.MinDetectionConfidence,
				ScriptPath:    cfg.MediaPipeScript,
				PythonPath:    cfg.MediaPipePython,
				IdleTimeout:   cfg.DetectorIdleTimeout,
			},
		})
		application.SetEnabled(true)
		if err := application.Start(); err != nil {
			log.Fatalf("Failed to start camera pipeline: %v", err)
		}
		srvCfg.App = application
	}

	srv := server.New(srvCfg)

	shutdown := func() {
		srv.Close()
		if application != nil {
			application.Stop()
		}
		st.Close()
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		shutdown()
		os.Exit(0)
	}()

	if !cfg.TrayEnabled {
		fmt.Printf("Starting server on %s\n", cfg.HTTPAddress)
		if err := srv.ListenAndServe(cfg.HTTPAddress); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.HTTPAddress)
		if err := srv.ListenAndServe(cfg.HTTPAddress); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// systray must own the main thread
	t := tray.New(application != nil && application.IsEnabled())
	if application != nil {
		t.OnToggle(application.SetEnabled)
		t.OnReset(application.Reset)
		application.OnLetter(func(rec app.Recognition) {
			t.SetLastLetter(rec.Hand, string(rec.Result.Letter))
		})
	}
	t.OnOpen(func() { openBrowser(viewerURL(cfg.HTTPAddress)) })
	t.OnQuit(shutdown)
	t.Run()
}

func viewerURL(addr string) string {
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
