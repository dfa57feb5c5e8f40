package concur

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

// ErrUnexpectedStatus wraps every non-2xx response
var ErrUnexpectedStatus = errors.New("unexpected status from expense backend")

// ErrMissingReportID is returned when a created report carries no id
var ErrMissingReportID = errors.New("report id missing from create response")

// StatusError carries the status code and backend message of a failed call
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d", ErrUnexpectedStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Config holds connection settings for the expense backend
type Config struct {
	BaseURL     string
	AccessToken string
	UserID      string
	UserLogin   string
	Timeout     time.Duration
}

// Client implements port.ReportClient over the Concur REST API
type Client struct {
	baseURL    string
	token      string
	userID     string
	userLogin  string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ port.ReportClient = (*Client)(nil)

// NewClient creates a new Client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		userID:     cfg.UserID,
		userLogin:  cfg.UserLogin,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type reportItem struct {
	ID                 string      `json:"ID"`
	Name               string      `json:"Name"`
	Purpose            string      `json:"Purpose"`
	Total              json.Number `json:"Total"`
	CurrencyCode       string      `json:"CurrencyCode"`
	ApprovalStatusName string      `json:"ApprovalStatusName"`
	CreateDate         string      `json:"CreateDate"`
}

type reportList struct {
	Items []reportItem `json:"Items"`
}

// ListReports returns the user's most recent reports
func (c *Client) ListReports(ctx context.Context, limit int) ([]report.Summary, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("user", c.userLogin)

	raw, _, err := c.do(ctx, http.MethodGet, "/api/v3.0/expense/reports?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	var list reportList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	reports := make([]report.Summary, 0, len(list.Items))
	for _, item := range list.Items {
		reports = append(reports, item.summary())
	}
	return reports, nil
}

func (r reportItem) summary() report.Summary {
	s := report.Summary{
		ID:       r.ID,
		Name:     r.Name,
		Purpose:  r.Purpose,
		Currency: r.CurrencyCode,
		Status:   r.ApprovalStatusName,
	}
	if r.Total != "" {
		if d, err := decimal.NewFromString(r.Total.String()); err == nil {
			s.Total = d
		}
	}
	if t, ok := parseCreateDate(r.CreateDate); ok {
		s.CreatedAt = &t
	}
	return s
}

var createDateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999", "2006-01-02"}

func parseCreateDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range createDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type customField struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type createReportBody struct {
	CustomData             []customField `json:"customData"`
	BusinessPurpose        string        `json:"businessPurpose"`
	Comment                string        `json:"comment"`
	CountryCode            string        `json:"countryCode"`
	CountrySubDivisionCode string        `json:"countrySubDivisionCode"`
	Name                   string        `json:"name"`
	PolicyID               string        `json:"policyId"`
}

// Custom field ids holding the policy acknowledgements
const (
	giftPolicyField = "custom16"
	taxPolicyField  = "custom6"
)

// CreateReport opens a report and returns its id, taken from the response
// body when present and from the Location header otherwise.
func (c *Client) CreateReport(ctx context.Context, req report.CreateRequest) (string, error) {
	body := createReportBody{
		CustomData: []customField{
			{ID: giftPolicyField, Value: strconv.FormatBool(req.GiftPolicyCompliance)},
			{ID: taxPolicyField, Value: strconv.FormatBool(req.TaxPolicyCompliance)},
		},
		BusinessPurpose:        req.BusinessPurpose,
		Comment:                req.Comment,
		CountryCode:            req.CountryCode,
		CountrySubDivisionCode: req.CountrySubdivisionCode,
		Name:                   req.Name,
		PolicyID:               req.PolicyID,
	}

	path := fmt.Sprintf("/expensereports/v4/users/%s/context/TRAVELER/reports", url.PathEscape(c.userID))
	raw, header, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}

	if id := idFromBody(raw, "reportId", "ReportId", "ID", "Id"); id != "" {
		return id, nil
	}
	if id := idFromLocation(header.Get("Location")); id != "" {
		return id, nil
	}
	return "", ErrMissingReportID
}

type createEntryBody struct {
	*expense.Payload
	TransactionAmount json.Number `json:"TransactionAmount"`
}

// CreateEntry adds one mapped expense to its report
func (c *Client) CreateEntry(ctx context.Context, entry *expense.Payload) (string, error) {
	if entry == nil {
		return "", errors.New("create entry: nil payload")
	}

	q := url.Values{}
	q.Set("user", c.userLogin)
	body := createEntryBody{
		Payload:           entry,
		TransactionAmount: json.Number(entry.TransactionAmount.StringFixed(2)),
	}

	raw, _, err := c.do(ctx, http.MethodPost, "/api/v3.0/expense/entries?"+q.Encode(), body)
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}
	return idFromBody(raw, "ID", "Id", "id"), nil
}

// do sends one JSON request. Non-2xx responses become a *StatusError with
// the backend's Message field when it has one.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, http.Header, error) {
	reqID := uuid.NewString()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encode json: %w", err)
		}
		reader = bytes.NewReader(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Expense backend request failed",
			zap.String("req_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Info("Expense backend response",
		zap.String("req_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode/100 != 2 {
		return nil, nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, resp.Header, nil
}

func errorMessage(raw []byte) string {
	var e struct {
		Message string `json:"Message"`
		Lower   string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Lower != "" {
			return e.Lower
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// idFromBody returns the first non-empty value among keys, which may be a
// string or a number
func idFromBody(raw []byte, keys ...string) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) == nil && s != "" {
			return s
		}
		var n json.Number
		if json.Unmarshal(v, &n) == nil && n != "" {
			return n.String()
		}
	}
	return ""
}

func idFromLocation(location string) string {
	_, id, ok := strings.Cut(location, "/reports/")
	if !ok {
		return ""
	}
	return strings.Trim(id, "/")
}
