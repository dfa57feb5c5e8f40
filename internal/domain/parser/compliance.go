package parser

import (
	"regexp"
	"strings"
)

// Compliance records which policy certifications the user accepted
type Compliance struct {
	Gift bool `json:"giftPolicyCompliance"`
	Tax  bool `json:"taxPolicyCompliance"`
}

// Accepted reports whether at least one policy was accepted
func (c Compliance) Accepted() bool {
	return c.Gift || c.Tax
}

var (
	giftPhrases = []string{
		"gift policy: true", "gift policy: yes",
		"gift policy compliance: true", "gift policy compliance: yes",
		"gift: true", "gift: yes",
		"custom16: true", "custom16: yes",
		"first: true", "first: yes",
		"✓ gift", "checked gift", "agree gift", "accept gift",
	}
	taxPhrases = []string{
		"irs tax policy: true", "irs tax policy: yes",
		"irs: true", "irs: yes",
		"tax policy: true", "tax policy: yes",
		"custom6: true", "custom6: yes",
		"second: true", "second: yes",
		"✓ irs", "checked irs", "agree irs", "accept irs",
	}
	bothPhrases = []string{
		"i agree to both", "agree to both", "accept both", "yes to both", "both policies",
	}
)

// line-scoped acknowledgements match whole words, so "yesterday" is not a yes
// and "first" does not mention the IRS
var (
	affirmativeRe = regexp.MustCompile(`\b(?:true|yes)\b|✓`)
	giftWordRe    = regexp.MustCompile(`\bgift\b`)
	taxWordRe     = regexp.MustCompile(`\b(?:irs|tax)\b`)
)

// ParseCompliance scans text for policy acknowledgements. It never fails;
// anything unrecognised leaves both flags false.
func ParseCompliance(text string) Compliance {
	msg := strings.ToLower(text)

	if hasAny(msg, bothPhrases) {
		return Compliance{Gift: true, Tax: true}
	}

	c := Compliance{
		Gift: hasAny(msg, giftPhrases),
		Tax:  hasAny(msg, taxPhrases),
	}

	for _, line := range strings.Split(msg, "\n") {
		if !affirmativeRe.MatchString(line) {
			continue
		}
		if giftWordRe.MatchString(line) {
			c.Gift = true
		}
		if taxWordRe.MatchString(line) {
			c.Tax = true
		}
	}
	return c
}
