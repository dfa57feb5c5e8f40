package conversation

import (
	"fmt"
	"strconv"
	"strings"
)

// Intent is what a free-text message asks for in a given state
type Intent int

const (
	IntentUnknown Intent = iota
	IntentNewReport
	IntentExistingReport
	IntentListReports
	IntentHelp
)

var intentNames = map[Intent]string{
	IntentUnknown:        "unknown",
	IntentNewReport:      "new_report",
	IntentExistingReport: "existing_report",
	IntentListReports:    "list_reports",
	IntentHelp:           "help",
}

func (i Intent) String() string {
	return intentNames[i]
}

// choice replies are matched whole so "new" never fires inside "renew"
var (
	newReportReplies      = []string{"1", "new", "create new", "create", "new report", "create new report"}
	existingReportReplies = []string{"2", "existing", "add to existing", "existing report", "add to existing report"}
)

// command phrases are matched anywhere in the message
var (
	listReportPhrases = []string{
		"show reports", "list reports", "get reports", "fetch reports",
		"view reports", "my reports", "existing reports", "all reports",
		"show my reports", "list my reports",
	}
	helpPhrases = []string{"help", "what can you do", "commands", "options"}
)

func normalizeReply(text string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(text)), " .!")
}

// ParseChoice interprets a reply to the new-or-existing question
func ParseChoice(text string) Intent {
	reply := normalizeReply(text)
	switch {
	case contains(newReportReplies, reply):
		return IntentNewReport
	case contains(existingReportReplies, reply):
		return IntentExistingReport
	}
	return IntentUnknown
}

// ParseCommand interprets a message sent with no flow in progress. Listing
// wins over help when both appear.
func ParseCommand(text string) Intent {
	msg := strings.ToLower(text)
	switch {
	case containsAny(msg, listReportPhrases):
		return IntentListReports
	case containsAny(msg, helpPhrases):
		return IntentHelp
	}
	return IntentUnknown
}

// ParseSelection reads a 1-based report number and checks it against count
func ParseSelection(text string, count int) (int, error) {
	n, err := strconv.Atoi(normalizeReply(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, strings.TrimSpace(text))
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("%w: %d not in 1-%d", ErrSelectionOutOfRange, n, count)
	}
	return n, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
