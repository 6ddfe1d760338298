// Package app runs the camera fingerspelling pipeline: frames go through the
// hand detector, each hand feeds its own letter classifier, and stable letters
// are persisted and handed to listeners.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while no hand is in view.
	IdleFPS = 5
	// IdleTimeout is how long without a hand before dropping to IdleFPS.
	IdleTimeout = 2 * time.Second
	// LetterGap is how many frames a hand must go without a letter before
	// the same letter counts as a new one. It spans more than the five
	// frames a stability dip can last.
	LetterGap = 10
)

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	Camera   capture.Config
	Detector detector.Config
}

// Recognition is a stable letter from one hand.
type Recognition struct {
	Hand   string         `json:"hand"`
	Result gesture.Result `json:"result"`
}

// LetterListener is called for every emitted Recognition.
type LetterListener func(Recognition)

// App owns the camera, the detector and one classifier per hand stream.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	enabled  bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	done     chan struct{}

	// guarded by procMu
	procMu      sync.Mutex
	classifiers map[string]*gesture.Classifier
	lastLetter  map[string]gesture.Letter
	gaps        map[string]int
	sessionID   string
	last        *Recognition
	listeners   []LetterListener

	frameMu sync.Mutex
	frame   *gocv.Mat
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	a := &App{
		config:      config,
		camera:      capture.NewCamera(config.Camera),
		classifiers: make(map[string]*gesture.Classifier),
		lastLetter:  make(map[string]gesture.Letter),
		gaps:        make(map[string]int),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables letter detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether letter detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning reports whether the pipeline goroutine is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnLetter registers a listener for emitted letters.
func (a *App) OnLetter(fn LetterListener) {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// SessionID returns the store session the pipeline is writing to, or "".
func (a *App) SessionID() string {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.sessionID
}

// LastRecognition returns the most recent emitted letter.
func (a *App) LastRecognition() (Recognition, bool) {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	if a.last == nil {
		return Recognition{}, false
	}
	return *a.last, true
}

// Start opens the camera, begins a store session and starts the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.beginSession()

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline, ends the session and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-done

	if err := a.Camera().Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.endSession()
	a.setFrame(nil)

	log.Println("Detection pipeline stopped")
}

// Reset drops every classifier and, when a session is open, starts a new one.
func (a *App) Reset() {
	running := a.IsRunning()

	a.endSession()

	a.procMu.Lock()
	a.classifiers = make(map[string]*gesture.Classifier)
	a.lastLetter = make(map[string]gesture.Letter)
	a.gaps = make(map[string]int)
	a.last = nil
	a.procMu.Unlock()

	if running {
		a.beginSession()
	}
}

// ProcessHands runs one frame's detected hands through their classifiers.
// Hands are keyed by handedness. Hands with the thumb on the left are
// mirrored first, so left hands and mirrored cameras read like right hands.
// A letter is persisted only when it differs from the previous letter of the
// same hand, or when that hand went LetterGap frames without one.
func (a *App) ProcessHands(hands []detector.HandLandmarks) []Recognition {
	a.procMu.Lock()

	var out []Recognition
	seen := make(map[string]bool, len(hands))
	for i := range hands {
		key := handKey(&hands[i], i)

		c, ok := a.classifiers[key]
		if !ok {
			c = gesture.NewClassifier()
			a.classifiers[key] = c
		}

		hand := hands[i]
		if !hand.ThumbOnRight() {
			hand = hand.Mirrored()
		}

		r := c.ClassifyHand(&hand)
		if r == nil {
			continue
		}

		rec := Recognition{Hand: key, Result: *r}
		if a.lastLetter[key] != r.Letter {
			a.lastLetter[key] = r.Letter
			a.persist(rec)
		}
		seen[key] = true
		a.last = &rec
		out = append(out, rec)
	}

	for key := range a.lastLetter {
		if seen[key] {
			delete(a.gaps, key)
			continue
		}
		a.gaps[key]++
		if a.gaps[key] >= LetterGap {
			delete(a.lastLetter, key)
			delete(a.gaps, key)
		}
	}

	listeners := append([]LetterListener(nil), a.listeners...)
	a.procMu.Unlock()

	for _, rec := range out {
		for _, fn := range listeners {
			fn(rec)
		}
	}
	return out
}

// handKey identifies a hand stream across frames.
func handKey(hand *detector.HandLandmarks, index int) string {
	if hand.Handedness != "" {
		return hand.Handedness
	}
	if index == 0 {
		return "Right"
	}
	return "Left"
}

// persist appends rec to the open session. Caller holds procMu.
func (a *App) persist(rec Recognition) {
	if a.config.Store == nil || a.sessionID == "" {
		return
	}

	err := a.config.Store.Letters().Append(&store.LetterRecord{
		SessionID:       a.sessionID,
		Hand:            rec.Hand,
		Letter:          string(rec.Result.Letter),
		Confidence:      rec.Result.Confidence,
		StabilityScore:  rec.Result.StabilityScore,
		SecondaryMethod: rec.Result.SecondaryMethod,
		ConfusionGroup:  rec.Result.ConfusionGroup,
	})
	if err != nil {
		log.Printf("Failed to store letter %s: %v", rec.Result.Letter, err)
	}
}

func (a *App) beginSession() {
	if a.config.Store == nil {
		return
	}

	sess := &store.Session{ID: uuid.NewString(), Source: store.SourceCamera}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		log.Printf("Failed to create camera session: %v", err)
		return
	}

	a.procMu.Lock()
	a.sessionID = sess.ID
	a.procMu.Unlock()
}

func (a *App) endSession() {
	a.procMu.Lock()
	id := a.sessionID
	a.sessionID = ""
	a.procMu.Unlock()

	if id == "" || a.config.Store == nil {
		return
	}
	if err := a.config.Store.Sessions().End(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to end session %s: %v", id, err)
	}
}

// ReadFrame returns a copy of the latest camera frame for previews.
// The caller must close it.
func (a *App) ReadFrame() (*gocv.Mat, error) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame == nil {
		return nil, capture.ErrCameraNotOpen
	}
	clone := a.frame.Clone()
	return &clone, nil
}

// setFrame keeps a copy of frame as the latest preview; nil clears it.
func (a *App) setFrame(frame *gocv.Mat) {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame != nil {
		a.frame.Close()
		a.frame = nil
	}
	if frame != nil {
		clone := frame.Clone()
		a.frame = &clone
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
