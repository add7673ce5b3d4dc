package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"outbound-dialer/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Source is the read side of the placed-calls log. Reads must be user-scoped.
type Source interface {
	List(ctx context.Context, userID string, from, to time.Time) ([]calls.PlacedCall, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

// PlacedCallsSummary counts placed calls per UTC day and per outbound campaign.
func (s *Service) PlacedCallsSummary(ctx context.Context, req PlacedCallsRequest) (PlacedCallsSummary, error) {
	if req.UserID == "" {
		return PlacedCallsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return PlacedCallsSummary{}, ErrInvalidRequest
	}
	if s.src == nil {
		return PlacedCallsSummary{}, errors.New("reporting: source not configured")
	}

	rows, err := s.src.List(ctx, req.UserID, req.Range.From, req.Range.To)
	if err != nil {
		return PlacedCallsSummary{}, err
	}

	out := PlacedCallsSummary{Range: req.Range, ByOutbound: map[string]int{}, ByDay: []DayCount{}}
	days := map[string]int{}
	numbers := map[string]struct{}{}
	for _, c := range rows {
		if req.OutboundID != "" && c.OutboundID != req.OutboundID {
			continue
		}
		out.TotalCalls++
		out.ByOutbound[c.OutboundID]++
		days[c.StartTime.UTC().Format(time.DateOnly)]++
		numbers[c.To] = struct{}{}

		t := c.StartTime
		if out.FirstCallAt == nil || t.Before(*out.FirstCallAt) {
			out.FirstCallAt = &t
		}
		if out.LastCallAt == nil || t.After(*out.LastCallAt) {
			out.LastCallAt = &t
		}
	}
	out.UniqueTo = len(numbers)

	for d, n := range days {
		out.ByDay = append(out.ByDay, DayCount{Date: d, Count: n})
	}
	sort.Slice(out.ByDay, func(i, j int) bool { return out.ByDay[i].Date < out.ByDay[j].Date })
	return out, nil
}
