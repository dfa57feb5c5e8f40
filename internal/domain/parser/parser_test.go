package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReportDetails(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   ReportDetails
		wantOK bool
	}{
		{
			name:   "colon form",
			input:  "Report Name: Q1 Travel\nBusiness Purpose: Client visit",
			want:   ReportDetails{Name: "Q1 Travel", Purpose: "Client visit"},
			wantOK: true,
		},
		{
			name:   "colon form with comment and markdown",
			input:  "**Report Name**: July Office Supplies\n**Purpose**: Monthly restock\nComments: split: two stores",
			want:   ReportDetails{Name: "July Office Supplies", Purpose: "Monthly restock", Comment: "split: two stores"},
			wantOK: true,
		},
		{
			name:   "value mentioning a keyword stays with its key",
			input:  "Purpose: rename the team offsite\nName: Offsite",
			want:   ReportDetails{Name: "Offsite", Purpose: "rename the team offsite"},
			wantOK: true,
		},
		{
			name:   "colon form missing purpose",
			input:  "Report Name: Q1 Travel",
			wantOK: false,
		},
		{
			name:   "quoted phrases keep their case",
			input:  `Please call it "Boston Trip" for "Client Kickoff"`,
			want:   ReportDetails{Name: "Boston Trip", Purpose: "Client Kickoff"},
			wantOK: true,
		},
		{
			name:   "report called with purpose",
			input:  `a report called 'March Meals' whose purpose is 'team lunches'`,
			want:   ReportDetails{Name: "March Meals", Purpose: "team lunches"},
			wantOK: true,
		},
		{
			name:   "no structure",
			input:  "just make something up",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseReportDetails(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseCompliance(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Compliance
	}{
		{"blanket", "I agree to both policies", Compliance{Gift: true, Tax: true}},
		{"blanket overrides other content", "gift: no\nirs: no\nbut fine, yes to both", Compliance{Gift: true, Tax: true}},
		{"checkbox lines", "Gift Policy Compliance: ✓\nIRS Tax Policy Compliance: ✓", Compliance{Gift: true, Tax: true}},
		{"gift only", "gift policy: yes", Compliance{Gift: true}},
		{"tax keyword on its own line", "Tax: true", Compliance{Tax: true}},
		{"legacy field names", "custom6: yes", Compliance{Tax: true}},
		{"no affirmative", "what is the gift policy?", Compliance{}},
		{"empty", "", Compliance{}},
		{"affirmative inside a word", "yesterday's tax receipt", Compliance{}},
		{"truthful is not true", "gift card, truthfully", Compliance{}},
		{"legacy first field is gift only", "first: yes", Compliance{Gift: true}},
		{"free-form yes on tax line", "yes, tax policy is fine", Compliance{Tax: true}},
		{"taxi is not tax", "taxi: yes", Compliance{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompliance(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Gift || tt.want.Tax, got.Accepted())
		})
	}
}
