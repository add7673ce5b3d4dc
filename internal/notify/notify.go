package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultLimit = 3

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     Variant   `json:"variant"`
	CreatedAt   time.Time `json:"createdAt"`
}

type EventType string

const (
	EventPublished EventType = "notification_published"
	EventDismissed EventType = "notification_dismissed"
)

type Event struct {
	Type         EventType    `json:"type"`
	Notification Notification `json:"notification"`
}

// Service keeps the N most recent notifications and fans them out to subscribers.
// Subscribers are called synchronously, outside the lock, and must not block.
type Service struct {
	mu     sync.Mutex
	limit  int
	items  []Notification
	subs   map[int]func(Event)
	nextID int

	Now func() time.Time
}

func New(limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{limit: limit, subs: map[int]func(Event){}, Now: time.Now}
}

// Publish records a notification. The oldest is evicted once the limit is reached.
func (s *Service) Publish(title, description string, v Variant) Notification {
	if v == "" {
		v = VariantDefault
	}
	n := Notification{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Variant:     v,
		CreatedAt:   s.Now().UTC(),
	}

	s.mu.Lock()
	s.items = append([]Notification{n}, s.items...)
	if len(s.items) > s.limit {
		s.items = s.items[:s.limit]
	}
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventPublished, Notification: n})
	}
	return n
}

func (s *Service) Info(title, description string) Notification {
	return s.Publish(title, description, VariantDefault)
}

func (s *Service) Error(title, description string) Notification {
	return s.Publish(title, description, VariantDestructive)
}

// Dismiss removes one notification. Returns false when id is unknown.
func (s *Service) Dismiss(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, n := range s.items {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	n := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Event{Type: EventDismissed, Notification: n})
	}
	return true
}

// List returns newest first.
func (s *Service) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Subscribe registers fn and returns its unsubscribe func.
func (s *Service) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) snapshotSubs() []func(Event) {
	out := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
