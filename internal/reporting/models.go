package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// PlacedCallsRequest asks for a summary of the user's placed-calls log.
type PlacedCallsRequest struct {
	UserID string    `json:"-"`
	Range  TimeRange `json:"range"`
	// OutboundID narrows the summary to one campaign when set.
	OutboundID string `json:"outbound_id,omitempty"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PlacedCallsSummary struct {
	Range      TimeRange      `json:"range"`
	TotalCalls int            `json:"total_calls"`
	UniqueTo   int            `json:"unique_numbers"`
	ByDay      []DayCount     `json:"by_day"`
	ByOutbound map[string]int `json:"by_outbound"`

	FirstCallAt *time.Time `json:"first_call_at,omitempty"`
	LastCallAt  *time.Time `json:"last_call_at,omitempty"`
}
