// Package parser extracts structured answers from free-text chat replies.
package parser

import (
	"regexp"
	"strings"
)

// ReportDetails are the fields needed to open a new report
type ReportDetails struct {
	Name    string
	Purpose string
	Comment string
}

var (
	nameKeys    = []string{"report name", "name"}
	purposeKeys = []string{"business purpose", "purpose"}
	commentKeys = []string{"comments", "comment", "additional"}
)

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)report.*?(?:name|called).*?["'](.*?)["']`),
		regexp.MustCompile(`(?i)name.*?["'](.*?)["']`),
		regexp.MustCompile(`(?i)call it ["'](.*?)["']`),
	}
	purposePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)purpose.*?["'](.*?)["']`),
		regexp.MustCompile(`(?i)for ["'](.*?)["']`),
	}
)

// ParseReportDetails reads a report name and business purpose from text.
// The "Key: value" line form is tried first, then quoted phrases such as
// `call it "Q1 Travel" for "client visit"`. ok is false unless both name
// and purpose were found.
func ParseReportDetails(text string) (ReportDetails, bool) {
	if strings.Contains(text, ":") {
		if d, ok := parseColonLines(text); ok {
			return d, true
		}
	}

	name := firstSubmatch(namePatterns, text)
	purpose := firstSubmatch(purposePatterns, text)
	if name == "" || purpose == "" {
		return ReportDetails{}, false
	}
	return ReportDetails{Name: name, Purpose: purpose}, true
}

func parseColonLines(text string) (ReportDetails, bool) {
	var d ReportDetails
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.Trim(key, " *-•"))
		value = strings.TrimSpace(value)

		switch {
		case hasAny(key, nameKeys):
			d.Name = value
		case hasAny(key, purposeKeys):
			d.Purpose = value
		case hasAny(key, commentKeys):
			d.Comment = value
		}
	}
	return d, d.Name != "" && d.Purpose != ""
}

func firstSubmatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

func hasAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
