package api

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/fingerspell/internal/app"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/store"
	"github.com/google/uuid"
)

// session is one client stream: a classifier plus the letter it last emitted.
type session struct {
	mu         sync.Mutex
	classifier *gesture.Classifier
	lastLetter gesture.Letter
	gap        int
	lastSeen   time.Time
	closed     bool
}

// Registry hands out one classifier per client session id. Every frame of a
// session goes through the same classifier so its stability history follows
// that client only.
type Registry struct {
	store  *store.Store
	source store.Source

	mu       sync.Mutex
	sessions map[string]*session
}

// NewRegistry creates a Registry. Sessions are recorded in s, when non-nil,
// under the given source.
func NewRegistry(s *store.Store, source store.Source) *Registry {
	return &Registry{
		store:    s,
		source:   source,
		sessions: make(map[string]*session),
	}
}

// Open returns id unchanged when it is already registered, registers it when
// it is new, and allocates a fresh id when it is empty.
func (r *Registry) Open(id string) string {
	_, id = r.get(id)
	return id
}

// Classify feeds one frame into the session's classifier. Letters are
// appended to the stored session only when they change, or when the session
// went app.LetterGap frames without a letter.
func (r *Registry) Classify(id string, landmarks []detector.Point3D) (string, *gesture.Result) {
	sess, id := r.lock(id)
	defer sess.mu.Unlock()

	sess.lastSeen = time.Now()
	result := sess.classifier.Classify(landmarks)
	if result == nil {
		sess.gap++
		if sess.gap >= app.LetterGap {
			sess.lastLetter = ""
		}
		return id, nil
	}

	sess.gap = 0
	if result.Letter != sess.lastLetter {
		sess.lastLetter = result.Letter
		r.persist(id, result)
	}
	return id, result
}

// lock returns the live session for id with its mutex held. A session closed
// between lookup and locking is replaced by a fresh one.
func (r *Registry) lock(id string) (*session, string) {
	for {
		sess, sid := r.get(id)
		sess.mu.Lock()
		if !sess.closed {
			return sess, sid
		}
		sess.mu.Unlock()
		id = sid
	}
}

// Close forgets a session and marks it ended in the store.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[id]; ok {
		r.remove(id, sess)
		r.end(id)
	}
}

// Forget drops a session without touching the store.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sess, ok := r.sessions[id]; ok {
		r.remove(id, sess)
	}
}

// Prune closes every session idle for longer than maxIdle and returns how many were closed.
func (r *Registry) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, sess := range r.sessions {
		sess.mu.Lock()
		stale := sess.lastSeen.Before(cutoff)
		if stale {
			sess.closed = true
			delete(r.sessions, id)
		}
		sess.mu.Unlock()

		if stale {
			r.end(id)
			n++
		}
	}
	return n
}

// remove unregisters sess and marks it closed. Caller holds r.mu.
func (r *Registry) remove(id string, sess *session) {
	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) get(id string) (*session, string) {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok {
		sess = &session{classifier: gesture.NewClassifier(), lastSeen: time.Now()}
		r.sessions[id] = sess
		r.begin(id)
	}
	return sess, id
}

// begin records a new session in the store, reopening it when a pruned
// client comes back with the same id. Caller holds r.mu.
func (r *Registry) begin(id string) {
	if r.store == nil {
		return
	}
	if sess, err := r.store.Sessions().GetByID(id); err == nil {
		if sess.EndedAt != nil {
			if err := r.store.Sessions().Reopen(id); err != nil {
				log.Printf("Failed to reopen session %s: %v", id, err)
			}
		}
		return
	}
	if err := r.store.Sessions().Create(&store.Session{ID: id, Source: r.source}); err != nil {
		log.Printf("Failed to create session %s: %v", id, err)
	}
}

// end marks a session ended in the store. Caller holds r.mu.
func (r *Registry) end(id string) {
	if r.store == nil {
		return
	}
	if err := r.store.Sessions().End(id); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to end session %s: %v", id, err)
	}
}

func (r *Registry) persist(id string, result *gesture.Result) {
	if r.store == nil {
		return
	}

	err := r.store.Letters().Append(&store.LetterRecord{
		SessionID:       id,
		Letter:          string(result.Letter),
		Confidence:      result.Confidence,
		StabilityScore:  result.StabilityScore,
		SecondaryMethod: result.SecondaryMethod,
		ConfusionGroup:  result.ConfusionGroup,
	})
	if err != nil {
		log.Printf("Failed to store letter %s for %s: %v", result.Letter, id, err)
	}
}
