package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"
)

// runPipeline is the main detection loop that processes frames from the camera.
//
// Pipeline logic:
// 1. Start in active mode at the camera's configured FPS
// 2. Read a frame and keep it as the preview frame
// 3. Run hand detection and feed each hand to its classifier
// 4. After IdleTimeout without a hand, drop to IdleFPS
// 5. Switch back to the configured FPS as soon as a hand appears
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	camera := a.Camera()
	activeFPS := camera.FPS()
	activeMode := true
	lastHandTime := time.Now()

	ticker := time.NewTicker(time.Second / time.Duration(activeFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			a.setFrame(frame)
			handsSeen := a.processFrame(frame)
			frame.Close()

			if handsSeen > 0 {
				lastHandTime = time.Now()
				if !activeMode {
					activeMode = true
					camera.SetFPS(activeFPS)
					ticker.Reset(time.Second / time.Duration(activeFPS))
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastHandTime) > IdleTimeout {
				activeMode = false
				camera.SetFPS(IdleFPS)
				ticker.Reset(time.Second / time.Duration(IdleFPS))
				log.Println("Switched to idle mode")
			}
		}
	}
}

// processFrame detects hands in frame and classifies them. It returns the
// number of hands seen.
func (a *App) processFrame(frame *gocv.Mat) int {
	d := a.Detector()
	if d == nil {
		return 0
	}

	hands, err := d.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return 0
	}

	// empty frames still count towards letter gaps
	a.ProcessHands(hands)
	return len(hands)
}
