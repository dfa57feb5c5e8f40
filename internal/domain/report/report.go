package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report compliance and location defaults used when creating reports
const (
	DefaultCountryCode            = "US"
	DefaultCountrySubdivisionCode = "US-WA"
	DefaultPolicyID               = "2AFC92D1D0822F4A88D380BF14CFD05E"
)

// Status values reported by the expense backend
const (
	StatusApproved        = "Approved"
	StatusSubmitted       = "Submitted"
	StatusPendingApproval = "Pending Approval"
	StatusPending         = "Pending"
	StatusDraft           = "Draft"
	StatusRejected        = "Rejected"
)

// Summary is one report as returned by the listing endpoint
type Summary struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Purpose   string          `json:"purpose"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// Draft holds report details collected before compliance is acknowledged
type Draft struct {
	Name            string `json:"name"`
	BusinessPurpose string `json:"businessPurpose"`
	Comment         string `json:"comment,omitempty"`
}

// CreateRequest is sent to the backend to open a new report
type CreateRequest struct {
	Name                   string `json:"name"`
	BusinessPurpose        string `json:"businessPurpose"`
	Comment                string `json:"comment"`
	CountryCode            string `json:"countryCode"`
	CountrySubdivisionCode string `json:"countrySubdivisionCode"`
	PolicyID               string `json:"policyId"`
	GiftPolicyCompliance   bool   `json:"giftPolicyCompliance"`
	TaxPolicyCompliance    bool   `json:"taxPolicyCompliance"`
}

// NewCreateRequest builds a request from a draft and the acknowledged policies
func NewCreateRequest(d Draft, gift, tax bool) CreateRequest {
	return CreateRequest{
		Name:                   d.Name,
		BusinessPurpose:        d.BusinessPurpose,
		Comment:                d.Comment,
		CountryCode:            DefaultCountryCode,
		CountrySubdivisionCode: DefaultCountrySubdivisionCode,
		PolicyID:               DefaultPolicyID,
		GiftPolicyCompliance:   gift,
		TaxPolicyCompliance:    tax,
	}
}

// StatusIcon returns the marker shown next to a report in chat listings
func StatusIcon(status string) string {
	switch status {
	case StatusApproved:
		return "✅"
	case StatusSubmitted:
		return "📤"
	case StatusPendingApproval, StatusPending:
		return "⏳"
	case StatusDraft:
		return "📝"
	case StatusRejected:
		return "❌"
	default:
		return "📄"
	}
}
