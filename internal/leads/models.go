package leads

import "errors"

type Status string

const (
	StatusPending Status = "pending"
	StatusCalled  Status = "called"
	StatusFailed  Status = "failed"
)

// Lead is a contact to be called. Leads live in memory for the lifetime of a session.
type Lead struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber"`
	Status      Status `json:"status"`
	CallID      string `json:"callId,omitempty"`
}

func (l Lead) FullName() string {
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

var (
	ErrNotFound   = errors.New("leads: not found")
	ErrValidation = errors.New("leads: validation failed")
)

// SkippedRow explains why an import line produced no lead. Line is 1-based.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportReport struct {
	Added   []Lead       `json:"added"`
	Skipped []SkippedRow `json:"skipped"`
}
