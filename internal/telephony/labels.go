package telephony

var callStatusText = map[int]string{
	3: "In Progress",
	4: "Completed",
	5: "Busy",
	6: "Failed",
	7: "No Answer",
	8: "Canceled",
}

var conversationStatusText = map[int]string{
	10:  "Need Retry",
	20:  "In Call Queue",
	70:  "Voice Mail Left",
	100: "Success",
	110: "Not Successful",
	130: "Complete",
	150: "Unreachable",
	500: "Error",
}

var sentimentText = map[int]string{
	1: "Negative",
	2: "Slightly Negative",
	3: "Neutral",
	4: "Slightly Positive",
	5: "Positive",
}

func StatusText(status int) string { return lookup(callStatusText, status) }

func ConversationStatusText(status int) string { return lookup(conversationStatusText, status) }

func SentimentText(sentiment int) string { return lookup(sentimentText, sentiment) }

func lookup(m map[int]string, k int) string {
	if s, ok := m[k]; ok {
		return s
	}
	return "Unknown"
}
