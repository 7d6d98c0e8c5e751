package store

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"legalai-assistant/internal/model"
)

// DocumentDeleter is the slice of the document store a session eviction
// needs: cascading removal of file and record.
type DocumentDeleter interface {
	Delete(documentID string) bool
}

// SessionStore owns session records and per-session document membership.
// All state is process-lifetime only; a restart loses every session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	docs     DocumentDeleter
	ttl      time.Duration

	now func() time.Time
}

func NewSessionStore(docs DocumentDeleter, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*model.Session),
		docs:     docs,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create allocates a new session with an empty document list. Never fails.
func (s *SessionStore) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := s.now()
	s.sessions[id] = &model.Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		DocumentIDs:  []string{},
	}
	return id
}

// Get returns a snapshot of the session and refreshes its activity, so any
// lookup extends the session's life (sliding-window TTL). An expired
// session is evicted on the spot and reported as absent.
func (s *SessionStore) Get(sessionID string) (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, false
	}
	if s.expiredLocked(session) {
		s.evictLocked(sessionID)
		return model.Session{}, false
	}
	session.LastActivity = s.now()
	return snapshot(session), true
}

// AttachDocument appends the document id to the session's membership list.
// It never touches the document record itself; the document store owns
// those fields.
func (s *SessionStore) AttachDocument(sessionID, documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	session.DocumentIDs = append(session.DocumentIDs, documentID)
	session.DocumentCount++
	session.LastActivity = s.now()
	return true
}

// DetachDocument removes the first matching document id from the session.
// It does not delete the underlying document; the ingestion layer
// coordinates both sides.
func (s *SessionStore) DetachDocument(sessionID, documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	for i, id := range session.DocumentIDs {
		if id == documentID {
			session.DocumentIDs = append(session.DocumentIDs[:i], session.DocumentIDs[i+1:]...)
			session.DocumentCount--
			session.LastActivity = s.now()
			return true
		}
	}
	return false
}

// Evict removes the session and deletes every attached document.
func (s *SessionStore) Evict(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(sessionID)
}

// SweepExpired evicts every session whose inactivity exceeds the TTL and
// returns the evicted ids. Idempotent; safe to run concurrently with
// reads and writes.
func (s *SessionStore) SweepExpired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, session := range s.sessions {
		if s.expiredLocked(session) {
			evicted = append(evicted, id)
		}
	}
	for _, id := range evicted {
		s.evictLocked(id)
	}
	if len(evicted) > 0 {
		log.Printf("swept %d expired sessions", len(evicted))
	}
	return evicted
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) evictLocked(sessionID string) bool {
	session, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	for _, docID := range session.DocumentIDs {
		if s.docs != nil {
			s.docs.Delete(docID)
		}
	}
	delete(s.sessions, sessionID)
	return true
}

func (s *SessionStore) expiredLocked(session *model.Session) bool {
	return s.now().After(session.LastActivity.Add(s.ttl))
}

func snapshot(session *model.Session) model.Session {
	copied := *session
	copied.DocumentIDs = append([]string(nil), session.DocumentIDs...)
	return copied
}
