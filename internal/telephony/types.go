package telephony

import "time"

// Credentials authenticate one outbound campaign.
type Credentials struct {
	OutboundID string
	Token      string
}

type PlaceCallRequest struct {
	To       string         `json:"to"`
	CallData map[string]any `json:"callData,omitempty"`
}

type PlaceCallResult struct {
	ID            string `json:"id"`
	From          string `json:"from"`
	To            string `json:"to"`
	QueuePosition int    `json:"queuePosition"`
}

// CallsFilter is the body of the call-history search.
type CallsFilter struct {
	Skip        int      `json:"skip"`
	Limit       int      `json:"limit"`
	SortProp    string   `json:"sortProp"`
	IsAscending bool     `json:"isAscending"`
	FromDate    string   `json:"fromDate"`
	ToDate      string   `json:"toDate"`
	Tags        []string `json:"tags"`
	Statuses    []int    `json:"statuses"`
	SearchInput string   `json:"searchInput"`
}

// DefaultCallsFilter returns the first page of the last 30 days, newest first.
func DefaultCallsFilter(now time.Time) CallsFilter {
	return CallsFilter{
		Skip:        0,
		Limit:       50,
		SortProp:    "startTime",
		IsAscending: false,
		FromDate:    now.AddDate(0, 0, -30).UTC().Format(time.RFC3339),
		ToDate:      now.UTC().Format(time.RFC3339),
		Tags:        []string{},
		Statuses:    []int{},
	}
}

type CallSummary struct {
	ID                 string   `json:"id"`
	StartTime          string   `json:"startTime"`
	ConversationStatus int      `json:"conversationStatus"`
	Status             int      `json:"status"`
	From               string   `json:"from"`
	To                 string   `json:"to"`
	Duration           int      `json:"duration"`
	Tags               []string `json:"tags,omitempty"`
}

type CallsPage struct {
	Count   int           `json:"count"`
	Results []CallSummary `json:"results"`
}

type TranscriptLine struct {
	Role      int     `json:"role"`
	Content   string  `json:"content"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

type CollectedInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type CallDetails struct {
	ID                 string           `json:"id"`
	RelatedID          *string          `json:"relatedId"`
	StartTime          string           `json:"startTime"`
	ConversationStatus int              `json:"conversationStatus"`
	Status             int              `json:"status"`
	From               *string          `json:"from"`
	To                 *string          `json:"to"`
	Name               *string          `json:"name"`
	Duration           int              `json:"duration"`
	Recording          *string          `json:"recording"`
	Transcript         []TranscriptLine `json:"transcript"`
	Summary            *string          `json:"summary"`
	CollectedInfo      []CollectedInfo  `json:"collectedInfo"`
	Tags               []string         `json:"tags"`
	IsCallTransferred  bool             `json:"isCallTransferred"`
	OverallSentiment   int              `json:"overallSentiment"`
}

// CampaignStatus is the raw outbound status: 1 active, 2 inactive.
type CampaignStatus struct {
	Status int `json:"status"`
}

const (
	CampaignStatusActive   = 1
	CampaignStatusInactive = 2
)

// Active maps the raw status. Anything other than 1 or 2 is ErrUnknownStatus.
func (s CampaignStatus) Active() (bool, error) {
	switch s.Status {
	case CampaignStatusActive:
		return true, nil
	case CampaignStatusInactive:
		return false, nil
	default:
		return false, ErrUnknownStatus
	}
}

type StatusCounters struct {
	TotalCalls       int    `json:"totalCalls"`
	TotalLeads       int    `json:"totalLeads"`
	NeedRetry        int    `json:"needRetry"`
	WrongCountryCode int    `json:"wrongCountryCode"`
	NeedFollowUp     int    `json:"needFollowUp"`
	VoiceMailLeft    int    `json:"voiceMailLeft"`
	Successful       int    `json:"successful"`
	Unsuccessful     int    `json:"unsuccessful"`
	WrongNumber      int    `json:"wrongNumber"`
	Completed        int    `json:"completed"`
	Unreachable      int    `json:"unreachable"`
	Error            int    `json:"error"`
	Date             string `json:"date,omitempty"`
}

type SentimentCounters struct {
	Negative         int `json:"negative"`
	SlightlyNegative int `json:"slightlyNegative"`
	Neutral          int `json:"neutral"`
	SlightlyPositive int `json:"slightlyPositive"`
	Positive         int `json:"positive"`
}

type AnalyticsSnapshot struct {
	CallsStatusOverview    StatusCounters    `json:"callsStatusOverview"`
	CallsSentimentOverview SentimentCounters `json:"callsSentimentOverview"`
	CallsStatusTimeLine    []StatusCounters  `json:"callsStatusTimeLine"`
	CallsAverageTimeLine   []struct {
		Date                string  `json:"date"`
		AverageCallDuration float64 `json:"averageCallDuration"`
	} `json:"callsAverageTimeLine"`
	CallsCostTimeLine []struct {
		Date               string  `json:"date"`
		TotalPrice         float64 `json:"totalPrice"`
		AverageCostPerCall float64 `json:"averageCostPerCall"`
	} `json:"callsCostTimeLine"`
	CallsPickupRateTimeLine []struct {
		Date                 string  `json:"date"`
		PickupRatePercentage float64 `json:"pickupRatePercentage"`
	} `json:"callsPickupRateTimeLine"`
	CallsSuccessRateTimeLine []struct {
		Date                  string  `json:"date"`
		SuccessRatePercentage float64 `json:"successRatePercentage"`
	} `json:"callsSuccessRateTimeLine"`
	CallLabelCount []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Count int    `json:"count"`
	} `json:"callLabelCount"`
	CallEventsCounts struct {
		TakeMessageCount     int `json:"takeMessageCount"`
		SMSSentCount         int `json:"smsSentCount"`
		CallTransferredCount int `json:"callTransferredCount"`
		CalendarBookedCount  int `json:"calendarBookedCount"`
		EmailSentCount       int `json:"emailSentCount"`
	} `json:"callEventsCounts"`
	CallsByHourDayOfWeeks []struct {
		HourOfDay int `json:"hourOfDay"`
		DayOfWeek int `json:"dayOfWeek"`
		Count     int `json:"count"`
	} `json:"callsByHourDayOfWeeks"`
}
