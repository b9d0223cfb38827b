// Package memory is a non-persistent stand-in for the Postgres store. Data is
// lost on restart; it exists for local development without a database.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"studyflow/internal/model"
	"studyflow/internal/repository"

	"github.com/google/uuid"
)

// Store keeps every record kind in process behind one lock.
type Store struct {
	mu            sync.RWMutex
	users         map[string]*model.User
	documents     map[string]*model.Document
	docOrder      []string
	flashcards    []*model.Flashcard
	sessions      []*model.StudySession
	stories       map[string]*model.Story
	storyOrder    []string
	subscriptions map[string]*model.Subscription
	subOrder      []string
	events        map[string]struct{}
	deadLetters   []*model.DeadLetterMessage
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{
		users:         make(map[string]*model.User),
		documents:     make(map[string]*model.Document),
		stories:       make(map[string]*model.Story),
		subscriptions: make(map[string]*model.Subscription),
		events:        make(map[string]struct{}),
	}
}

// NewStore wraps a fresh in-memory Store as a repository.Store.
func NewStore() *repository.Store {
	m := New()
	return &repository.Store{
		Kind:          repository.KindMemory,
		Users:         m,
		Usage:         m,
		Documents:     m,
		Flashcards:    m,
		StudySessions: m,
		Stories:       m,
		Subscriptions: m,
		WebhookEvents: m,
		DeadLetters:   m,
		Health:        m,
	}
}

func now() time.Time { return time.Now().UTC() }

// vivify returns the user with id, creating a free profile if absent. Caller holds mu.
func (m *Store) vivify(id string) *model.User {
	u, ok := m.users[id]
	if !ok {
		email := id + "@demo.com"
		if strings.Contains(id, "@") {
			email = id
		}
		u = model.NewFreeUser(id, email, strings.SplitN(email, "@", 2)[0])
		m.users[id] = u
	}
	return u
}

func (m *Store) CreateUser(_ context.Context, u *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[u.ID]; ok {
		cp := *existing
		return &cp, nil
	}
	stored := *u
	if stored.SubscriptionStatus == "" {
		stored.SubscriptionStatus = model.SubscriptionStatusFree
	}
	stored.CreatedAt, stored.UpdatedAt = now(), now()
	m.users[u.ID] = &stored
	cp := stored
	return &cp, nil
}

// GetUserByID auto-vivifies unknown ids.
func (m *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.vivify(id)
	return &cp, nil
}

func (m *Store) IncrementDocumentsProcessed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.vivify(id)
	u.DocumentsProcessed++
	u.UpdatedAt = now()
	return nil
}

func (m *Store) ApplySubscriptionUpdate(_ context.Context, id string, upd model.SubscriptionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.vivify(id)
	upd.Apply(u)
	u.UpdatedAt = now()
	return nil
}

func (m *Store) RecordStory(_ context.Context, s *model.Story, maxStories int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.vivify(s.UserID)
	if maxStories > 0 && u.StoriesGenerated >= maxStories {
		return u.StoriesGenerated, repository.ErrStoryLimitReached
	}
	s.ID = uuid.NewString()
	s.CreatedAt = now()
	stored := *s
	m.stories[s.ID] = &stored
	m.storyOrder = append(m.storyOrder, s.ID)
	u.StoriesGenerated++
	u.UpdatedAt = now()
	return u.StoriesGenerated, nil
}

func (m *Store) CreateDocument(_ context.Context, d *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.NewString()
	d.CreatedAt, d.UpdatedAt = now(), now()
	if d.ProcessingStatus == "" {
		d.ProcessingStatus = model.StatusPending
	}
	stored := *d
	m.documents[d.ID] = &stored
	m.docOrder = append(m.docOrder, d.ID)
	return nil
}

func (m *Store) GetDocumentByID(_ context.Context, id string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.documents[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *Store) ListDocumentsByUser(_ context.Context, userID string, limit int) ([]model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Document{}
	for i := len(m.docOrder) - 1; i >= 0 && len(out) < limit; i-- {
		if d := m.documents[m.docOrder[i]]; d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *Store) transition(id, to string, mutate func(*model.Document)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok || !model.CanTransition(d.ProcessingStatus, to) {
		return repository.ErrInvalidTransition
	}
	d.ProcessingStatus = to
	d.UpdatedAt = now()
	if mutate != nil {
		mutate(d)
	}
	return nil
}

func (m *Store) MarkExtracted(_ context.Context, id, text string) error {
	return m.transition(id, model.StatusExtracted, func(d *model.Document) { d.ExtractedText = &text })
}

func (m *Store) MarkSummarized(_ context.Context, id, summary string) error {
	return m.transition(id, model.StatusSummarized, func(d *model.Document) { d.Summary = &summary })
}

func (m *Store) MarkCompleted(_ context.Context, id string) error {
	return m.transition(id, model.StatusCompleted, nil)
}

func (m *Store) MarkFailed(_ context.Context, id string, details model.ErrorDetails) error {
	return m.transition(id, model.StatusFailed, func(d *model.Document) { d.ErrorDetails = details })
}

func (m *Store) CreateFlashcard(_ context.Context, f *model.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[f.DocumentID]; !ok {
		return repository.ErrInvalidReference
	}
	f.ID = uuid.NewString()
	f.CreatedAt, f.UpdatedAt = now(), now()
	if f.Difficulty == "" {
		f.Difficulty = model.DifficultyMedium
	}
	stored := *f
	m.flashcards = append(m.flashcards, &stored)
	return nil
}

func (m *Store) listFlashcards(limit int, keep func(*model.Flashcard) bool) []model.Flashcard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Flashcard{}
	for i := len(m.flashcards) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(m.flashcards[i]) {
			out = append(out, *m.flashcards[i])
		}
	}
	return out
}

func (m *Store) ListFlashcardsByDocument(_ context.Context, documentID, userID string, limit int) ([]model.Flashcard, error) {
	return m.listFlashcards(limit, func(f *model.Flashcard) bool {
		return f.DocumentID == documentID && f.UserID == userID
	}), nil
}

func (m *Store) ListFlashcardsByUser(_ context.Context, userID string, limit int) ([]model.Flashcard, error) {
	return m.listFlashcards(limit, func(f *model.Flashcard) bool { return f.UserID == userID }), nil
}

func (m *Store) DeleteFlashcardsByDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.flashcards[:0]
	for _, f := range m.flashcards {
		if f.DocumentID != documentID {
			kept = append(kept, f)
		}
	}
	m.flashcards = kept
	return nil
}

func (m *Store) CreateStudySession(_ context.Context, s *model.StudySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.DocumentID != nil {
		if _, ok := m.documents[*s.DocumentID]; !ok {
			return repository.ErrInvalidReference
		}
	}
	s.ID = uuid.NewString()
	s.CreatedAt = now()
	stored := *s
	m.sessions = append(m.sessions, &stored)
	return nil
}

func (m *Store) ListStudySessionsByUser(_ context.Context, userID string, limit int) ([]model.StudySession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.StudySession{}
	for i := len(m.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.sessions[i].UserID == userID {
			out = append(out, *m.sessions[i])
		}
	}
	return out, nil
}

func (m *Store) GetStoryByID(_ context.Context, id string) (*model.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stories[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *Store) ListStoriesByUser(_ context.Context, userID string, limit int) ([]model.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Story{}
	for i := len(m.storyOrder) - 1; i >= 0 && len(out) < limit; i-- {
		if s := m.stories[m.storyOrder[i]]; s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Store) SetAudioURL(_ context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stories[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.AudioURL = &url
	return nil
}

func (m *Store) UpsertSubscription(_ context.Context, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Currency == "" {
		s.Currency = "USD"
	}
	if existing, ok := m.subscriptions[s.SubscriptionID]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
	} else {
		s.ID = uuid.NewString()
		s.CreatedAt = now()
		m.subOrder = append(m.subOrder, s.SubscriptionID)
	}
	s.UpdatedAt = now()
	stored := *s
	m.subscriptions[s.SubscriptionID] = &stored
	return nil
}

func (m *Store) ListSubscriptionsByUser(_ context.Context, userID string, limit int) ([]model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []model.Subscription{}
	for i := len(m.subOrder) - 1; i >= 0 && len(out) < limit; i-- {
		if s := m.subscriptions[m.subOrder[i]]; s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *Store) RecordEvent(_ context.Context, e *model.WebhookEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := e.Provider + ":" + e.EventID
	if _, seen := m.events[key]; seen {
		return false, nil
	}
	m.events[key] = struct{}{}
	return true, nil
}

func (m *Store) ForgetEvent(_ context.Context, provider, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, provider+":"+eventID)
	return nil
}

func (m *Store) Create(_ context.Context, msg *model.DeadLetterMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	cp.ID = uuid.NewString()
	cp.CreatedAt, cp.UpdatedAt = now(), now()
	m.deadLetters = append(m.deadLetters, &cp)
	return nil
}

// DeadLetters returns a snapshot of recorded dead letters.
func (m *Store) DeadLetters() []model.DeadLetterMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.DeadLetterMessage, 0, len(m.deadLetters))
	for _, d := range m.deadLetters {
		out = append(out, *d)
	}
	return out
}

func (m *Store) Ping(context.Context) error        { return nil }
func (m *Store) ProbeTables(context.Context) error { return nil }

var (
	_ repository.UserRepository         = (*Store)(nil)
	_ repository.UsageRepository        = (*Store)(nil)
	_ repository.DocumentRepository     = (*Store)(nil)
	_ repository.FlashcardRepository    = (*Store)(nil)
	_ repository.StudySessionRepository = (*Store)(nil)
	_ repository.StoryRepository        = (*Store)(nil)
	_ repository.SubscriptionRepository = (*Store)(nil)
	_ repository.WebhookEventRepository = (*Store)(nil)
	_ repository.DLQRepository          = (*Store)(nil)
	_ repository.HealthChecker          = (*Store)(nil)
)
