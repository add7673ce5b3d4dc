package leads

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Repository is the in-memory lead list. Insertion order is preserved. Safe for concurrent use.
type Repository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Lead

	NewID func() string
}

func NewRepository() *Repository {
	return &Repository{byID: map[string]*Lead{}, NewID: uuid.NewString}
}

// Add stores a new pending lead. First name, last name and phone are required.
func (r *Repository) Add(l Lead) (Lead, error) {
	l = normalize(l)
	if l.FirstName == "" || l.LastName == "" || l.PhoneNumber == "" {
		return Lead{}, fmt.Errorf("%w: first name, last name and phone number are required", ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(l), nil
}

func (r *Repository) insertLocked(l Lead) Lead {
	l.ID = r.NewID()
	l.Status = StatusPending
	l.CallID = ""
	cp := l
	r.byID[l.ID] = &cp
	r.order = append(r.order, l.ID)
	return l
}

func (r *Repository) addAll(in []Lead) []Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Lead, 0, len(in))
	for _, l := range in {
		out = append(out, r.insertLocked(l))
	}
	return out
}

func (r *Repository) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Repository) Get(id string) (Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byID[id]
	if !ok {
		return Lead{}, ErrNotFound
	}
	return *l, nil
}

func (r *Repository) List() []Lead {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Lead, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// Select returns the leads for ids in the given order. Unknown ids fail the whole call.
func (r *Repository) Select(ids []string) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Lead, 0, len(ids))
	for _, id := range ids {
		l, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *Repository) MarkCalled(id, callID string) error {
	return r.update(id, func(l *Lead) {
		l.Status = StatusCalled
		l.CallID = callID
	})
}

func (r *Repository) MarkFailed(id string) error {
	return r.update(id, func(l *Lead) { l.Status = StatusFailed })
}

func (r *Repository) update(id string, fn func(*Lead)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	fn(l)
	return nil
}

// ImportDelimitedText parses pasted comma-separated lines and appends the accepted leads.
// Nothing is added when the result is a validation error.
func (r *Repository) ImportDelimitedText(text string) (ImportReport, error) {
	return r.commit(ParseDelimitedText(text))
}

// ImportCSV parses a CSV file with a header row and appends the accepted leads.
func (r *Repository) ImportCSV(src io.Reader) (ImportReport, error) {
	rows, err := readCSV(src)
	if err != nil {
		return ImportReport{}, err
	}
	return r.commit(ParseTable(rows))
}

// ImportXLSX reads the first sheet of a workbook with the same column rules as ImportCSV.
func (r *Repository) ImportXLSX(src io.Reader) (ImportReport, error) {
	rows, err := readXLSX(src)
	if err != nil {
		return ImportReport{}, err
	}
	return r.commit(ParseTable(rows))
}

func (r *Repository) commit(rep ImportReport, err error) (ImportReport, error) {
	if err != nil {
		return rep, err
	}
	if len(rep.Added) == 0 {
		return rep, fmt.Errorf("%w: no valid leads found", ErrValidation)
	}
	rep.Added = r.addAll(rep.Added)
	return rep, nil
}

func normalize(l Lead) Lead {
	l.FirstName = strings.TrimSpace(l.FirstName)
	l.LastName = strings.TrimSpace(l.LastName)
	l.Email = strings.TrimSpace(l.Email)
	l.PhoneNumber = strings.TrimSpace(l.PhoneNumber)
	return l
}
