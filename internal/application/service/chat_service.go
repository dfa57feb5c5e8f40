package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/conversation"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/parser"
	"github.com/akhil1198/ER/internal/domain/report"
)

// Logger is the logging interface used by application services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ChatResponse is returned for every turn. Success=false carries a
// corrective prompt; the conversation always continues.
type ChatResponse struct {
	Success            bool                     `json:"success"`
	Message            string                   `json:"message"`
	SessionID          string                   `json:"sessionId"`
	State              conversation.State       `json:"state"`
	ExpenseData        *ExpenseData             `json:"expenseData,omitempty"`
	Reports            []report.Summary         `json:"reports,omitempty"`
	NeedsComplianceAck bool                     `json:"needsComplianceAck,omitempty"`
	ReportID           string                   `json:"reportId,omitempty"`
	EntryID            string                   `json:"entryId,omitempty"`
	ValidationErrors   expense.ValidationResult `json:"validationErrors,omitempty"`
}

// ExpenseData is the candidate expense shown to the user
type ExpenseData struct {
	Record  *expense.Record        `json:"record"`
	Mapping *expense.MappingResult `json:"mapping"`
	Warning string                 `json:"warning,omitempty"`
}

// ReceiptUpload is an uploaded receipt file
type ReceiptUpload struct {
	Filename string
	MimeType string
	Data     []byte
}

// ChatConfig tunes the orchestrator
type ChatConfig struct {
	CallTimeout     time.Duration
	ReportListLimit int
	ReceiptDir      string
}

// ChatService drives the receipt-to-report conversation
type ChatService interface {
	HandleMessage(ctx context.Context, sessionID, text string) *ChatResponse
	ProcessReceipt(ctx context.Context, sessionID string, upload ReceiptUpload) *ChatResponse
	ConfirmExpense(ctx context.Context, sessionID string, rec *expense.Record) *ChatResponse
	GetSession(ctx context.Context, sessionID string) (*conversation.Session, error)
	ResetSession(ctx context.Context, sessionID string) error
}

type chatServiceImpl struct {
	sessions   port.SessionStore
	extractor  port.Extractor
	normalizer port.ImageNormalizer
	reports    port.ReportClient
	storage    port.FileStorage
	notifier   port.Notifier
	mapper     *expense.Mapper
	recorder   *submissionRecorder
	locks      *sessionLocks
	config     ChatConfig
	now        func() time.Time
	logger     Logger
}

// ChatDeps groups the collaborators of the chat service. Normalizer,
// Storage, Notifier and Submissions may be nil.
type ChatDeps struct {
	Sessions    port.SessionStore
	Extractor   port.Extractor
	Normalizer  port.ImageNormalizer
	Reports     port.ReportClient
	Storage     port.FileStorage
	Notifier    port.Notifier
	Submissions port.SubmissionRepository
	Mapper      *expense.Mapper
}

// NewChatService creates a new ChatService
func NewChatService(deps ChatDeps, config ChatConfig, logger Logger) ChatService {
	if config.CallTimeout <= 0 {
		config.CallTimeout = 30 * time.Second
	}
	if config.ReportListLimit <= 0 {
		config.ReportListLimit = 15
	}
	if config.ReceiptDir == "" {
		config.ReceiptDir = "receipts"
	}
	return &chatServiceImpl{
		sessions:   deps.Sessions,
		extractor:  deps.Extractor,
		normalizer: deps.Normalizer,
		reports:    deps.Reports,
		storage:    deps.Storage,
		notifier:   deps.Notifier,
		mapper:     deps.Mapper,
		recorder:   &submissionRecorder{repo: deps.Submissions, logger: logger},
		locks:      newSessionLocks(),
		config:     config,
		now:        time.Now,
		logger:     logger,
	}
}

// HandleMessage interprets one text message in the session's current state
func (s *chatServiceImpl) HandleMessage(ctx context.Context, sessionID, text string) *ChatResponse {
	return s.turn(ctx, sessionID, func(sess *conversation.Session) (*ChatResponse, error) {
		switch sess.State {
		case conversation.StateAwaitingChoice:
			return s.handleChoice(ctx, sess, text)
		case conversation.StateAwaitingReportDetails:
			return s.handleReportDetails(ctx, sess, text)
		case conversation.StateAwaitingTaxCompliance:
			return s.handleCompliance(ctx, sess, text)
		case conversation.StateAwaitingReportSelection:
			return s.handleSelection(ctx, sess, text)
		default:
			return s.handleInitial(ctx, sess, text)
		}
	})
}

// ProcessReceipt extracts an expense from an uploaded receipt and makes it
// the session's candidate entry. Extraction failures fall back to a
// placeholder record.
func (s *chatServiceImpl) ProcessReceipt(ctx context.Context, sessionID string, upload ReceiptUpload) *ChatResponse {
	return s.turn(ctx, sessionID, func(sess *conversation.Session) (*ChatResponse, error) {
		rec, warning := s.extract(ctx, upload)
		file := s.archiveReceipt(ctx, upload)
		return s.setCandidate(ctx, sess, rec, file, conversation.TriggerReceiptProcessed, warning)
	})
}

// ConfirmExpense replaces the candidate record with a user-corrected one
func (s *chatServiceImpl) ConfirmExpense(ctx context.Context, sessionID string, rec *expense.Record) *ChatResponse {
	return s.turn(ctx, sessionID, func(sess *conversation.Session) (*ChatResponse, error) {
		if rec == nil {
			return &ChatResponse{Success: false, Message: "No expense data was provided."}, nil
		}
		return s.setCandidate(ctx, sess, expense.Sanitize(rec), "", conversation.TriggerExpenseConfirmed, "")
	})
}

// GetSession returns a copy of the stored session
func (s *chatServiceImpl) GetSession(ctx context.Context, sessionID string) (*conversation.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// ResetSession discards all session state
func (s *chatServiceImpl) ResetSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, port.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("Session reset", "session_id", sessionID)
	return nil
}

// turn runs one atomic unit of work for a session: lock, load, act, save.
// Errors and panics inside act reset the session and yield a generic reply.
func (s *chatServiceImpl) turn(ctx context.Context, sessionID string, act func(sess *conversation.Session) (*ChatResponse, error)) (resp *ChatResponse) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.loadSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to load session", "session_id", sessionID, "error", err)
		sess = conversation.NewSession(sessionID, s.now())
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic in conversation", "session_id", sessionID, "state", sess.State, "panic", r)
			sess.Reset(ctx)
			resp = &ChatResponse{Success: false, Message: msgGenericFailure}
		}

		sess.Touch(s.now())
		if err := s.sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
			s.logger.Error("Failed to save session", "session_id", sessionID, "error", err)
		}

		resp.SessionID = sess.ID
		resp.State = sess.State
	}()

	resp, err = act(sess)
	if err != nil {
		s.logger.Error("Conversation action failed", "session_id", sessionID, "state", sess.State, "error", err)
		sess.Reset(ctx)
		resp = &ChatResponse{Success: false, Message: msgGenericFailure}
	}
	return resp
}

func (s *chatServiceImpl) loadSession(ctx context.Context, id string) (*conversation.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, port.ErrSessionNotFound) {
		return conversation.NewSession(id, s.now()), nil
	}
	if err != nil {
		return nil, err
	}
	if !sess.State.IsValid() {
		s.logger.Error("Discarding session with unknown state", "session_id", id, "state", sess.State)
		sess.Reset(ctx)
	}
	return sess, nil
}

func (s *chatServiceImpl) handleInitial(ctx context.Context, sess *conversation.Session, text string) (*ChatResponse, error) {
	switch conversation.ParseCommand(text) {
	case conversation.IntentListReports:
		reports, err := s.listReports(ctx)
		if err != nil {
			return &ChatResponse{
				Success: false,
				Message: fmt.Sprintf("❌ **Failed to fetch reports**\n\nError: %v\n\nPlease try again.", err),
			}, nil
		}
		if len(reports) == 0 {
			return &ChatResponse{Success: true, Message: msgNoReports}, nil
		}
		return &ChatResponse{Success: true, Message: reportSummaryList(reports), Reports: reports}, nil
	case conversation.IntentHelp:
		return &ChatResponse{Success: true, Message: msgHelp}, nil
	}
	return &ChatResponse{Success: true, Message: msgWelcome}, nil
}

func (s *chatServiceImpl) handleChoice(ctx context.Context, sess *conversation.Session, text string) (*ChatResponse, error) {
	switch conversation.ParseChoice(text) {
	case conversation.IntentNewReport:
		if err := sess.Fire(ctx, conversation.TriggerChooseNew); err != nil {
			return nil, err
		}
		return &ChatResponse{Success: true, Message: msgAskReportDetails}, nil

	case conversation.IntentExistingReport:
		reports, err := s.listReports(ctx)
		if err != nil {
			return &ChatResponse{
				Success: false,
				Message: fmt.Sprintf("❌ Failed to fetch reports: %v\n\nPlease try again or create a new report instead.", err),
			}, nil
		}
		if len(reports) == 0 {
			return &ChatResponse{Success: true, Message: msgNoReportsForChoice}, nil
		}
		sess.AvailableReports = reports
		if err := sess.Fire(ctx, conversation.TriggerChooseExisting); err != nil {
			return nil, err
		}
		return &ChatResponse{Success: true, Message: reportChoiceList(reports), Reports: reports}, nil
	}

	return &ChatResponse{Success: false, Message: msgChooseOneOrTwo}, nil
}

func (s *chatServiceImpl) handleReportDetails(ctx context.Context, sess *conversation.Session, text string) (*ChatResponse, error) {
	details, ok := parser.ParseReportDetails(text)
	if !ok {
		return &ChatResponse{Success: false, Message: msgReportDetailsUnclear}, nil
	}

	draft := report.Draft{Name: details.Name, BusinessPurpose: details.Purpose, Comment: details.Comment}
	sess.PendingReportDraft = &draft
	if err := sess.Fire(ctx, conversation.TriggerDetailsParsed); err != nil {
		return nil, err
	}

	return &ChatResponse{
		Success:            true,
		Message:            complianceQuestion(draft),
		NeedsComplianceAck: true,
	}, nil
}

func (s *chatServiceImpl) handleCompliance(ctx context.Context, sess *conversation.Session, text string) (*ChatResponse, error) {
	if sess.PendingReportDraft == nil {
		sess.Reset(ctx)
		return &ChatResponse{Success: false, Message: msgSessionExpired}, nil
	}

	compliance := parser.ParseCompliance(text)
	if !compliance.Accepted() {
		return &ChatResponse{Success: false, Message: msgComplianceRequired, NeedsComplianceAck: true}, nil
	}

	draft := *sess.PendingReportDraft
	req := report.NewCreateRequest(draft, compliance.Gift, compliance.Tax)

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	reportID, err := s.reports.CreateReport(callCtx, req)
	cancel()
	s.recorder.report(ctx, sess.ID, draft.Name, reportID, err)
	if err != nil {
		s.logger.Error("Failed to create report", "session_id", sess.ID, "error", err)
		sess.Reset(ctx)
		return &ChatResponse{
			Success: false,
			Message: fmt.Sprintf("❌ Failed to create the expense report: %v\n\nPlease upload your receipt to start again.", err),
		}, nil
	}
	s.logger.Info("Report created", "session_id", sess.ID, "report_id", reportID, "gift", compliance.Gift, "tax", compliance.Tax)

	outcome := s.addEntry(ctx, sess, reportID)
	s.notify(ctx, draft, reportID, outcome, sess.ActiveRecord())

	if err := sess.Fire(ctx, conversation.TriggerComplianceAccepted); err != nil {
		return nil, err
	}

	return &ChatResponse{
		Success:          true,
		Message:          reportCreatedMessage(draft, reportID, outcome),
		ReportID:         reportID,
		EntryID:          outcome.entryID,
		ValidationErrors: outcome.errors,
	}, nil
}

func (s *chatServiceImpl) handleSelection(ctx context.Context, sess *conversation.Session, text string) (*ChatResponse, error) {
	n, err := conversation.ParseSelection(text, len(sess.AvailableReports))
	if err != nil {
		return &ChatResponse{
			Success: false,
			Message: selectionRange(len(sess.AvailableReports)),
			Reports: sess.AvailableReports,
		}, nil
	}

	selected, err := sess.SelectReport(n)
	if err != nil {
		return nil, err
	}

	outcome := s.addEntry(ctx, sess, selected.ID)
	if err := sess.Fire(ctx, conversation.TriggerReportSelected); err != nil {
		return nil, err
	}

	return &ChatResponse{
		Success:          outcome.err == nil && outcome.errors.OK(),
		Message:          entryAddedMessage(selected, outcome),
		ReportID:         selected.ID,
		EntryID:          outcome.entryID,
		ValidationErrors: outcome.errors,
	}, nil
}

// addEntry maps the session's active record against reportID and creates
// the entry when it validates. Failures are reported, never returned.
func (s *chatServiceImpl) addEntry(ctx context.Context, sess *conversation.Session, reportID string) entryOutcome {
	rec := sess.ActiveRecord()
	if rec == nil {
		return entryOutcome{}
	}

	result := s.mapper.Map(rec, reportID)
	if !result.Valid() {
		s.logger.Info("Skipping entry with validation errors", "session_id", sess.ID, "report_id", reportID, "errors", result.Errors.String())
		return entryOutcome{errors: result.Errors}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	entryID, err := s.reports.CreateEntry(callCtx, result.Payload)
	cancel()
	s.recorder.entry(ctx, sess.ID, sess.ReceiptFile, result.Payload, entryID, err)
	if err != nil {
		s.logger.Error("Failed to create entry", "session_id", sess.ID, "report_id", reportID, "error", err)
		return entryOutcome{attempted: true, err: err}
	}

	s.logger.Info("Entry created", "session_id", sess.ID, "report_id", reportID, "entry_id", entryID)
	return entryOutcome{attempted: true, entryID: entryID}
}

func (s *chatServiceImpl) listReports(ctx context.Context) ([]report.Summary, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	reports, err := s.reports.ListReports(callCtx, s.config.ReportListLimit)
	if err != nil {
		s.logger.Error("Failed to list reports", "error", err)
		return nil, err
	}
	return reports, nil
}

func (s *chatServiceImpl) setCandidate(ctx context.Context, sess *conversation.Session, rec *expense.Record, file string, trigger conversation.Trigger, warning string) (*ChatResponse, error) {
	result := s.mapper.Map(rec, "")
	sess.SetCurrent(rec, result.Payload, file)
	if err := sess.Fire(ctx, trigger); err != nil {
		return nil, err
	}

	s.logger.Info("Expense classified",
		"session_id", sess.ID,
		"code", result.Payload.ExpenseTypeCode,
		"resolution", result.Resolution,
		"errors", len(result.Errors),
	)

	msg := expenseSummary(rec, result)
	if warning != "" {
		msg = warning + "\n\n" + msg
	}
	return &ChatResponse{
		Success:          true,
		Message:          msg,
		ExpenseData:      &ExpenseData{Record: rec, Mapping: result, Warning: warning},
		ValidationErrors: result.Errors,
	}, nil
}

func (s *chatServiceImpl) extract(ctx context.Context, upload ReceiptUpload) (*expense.Record, string) {
	data, mimeType := upload.Data, upload.MimeType
	if s.normalizer != nil {
		converted, convertedType, err := s.normalizer.Normalize(data, mimeType)
		if err != nil {
			s.logger.Error("Failed to normalize receipt", "filename", upload.Filename, "mime_type", mimeType, "error", err)
			return expense.Placeholder(), msgExtractionWarning
		}
		data, mimeType = converted, convertedType
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()

	rec, err := s.extractor.Extract(callCtx, data, mimeType)
	if err != nil || rec == nil {
		s.logger.Error("Receipt extraction failed", "extractor", s.extractor.Name(), "filename", upload.Filename, "error", err)
		return expense.Placeholder(), msgExtractionWarning
	}
	return expense.Sanitize(rec), ""
}

func (s *chatServiceImpl) archiveReceipt(ctx context.Context, upload ReceiptUpload) string {
	if s.storage == nil || len(upload.Data) == 0 {
		return ""
	}
	name := filepath.Join(s.config.ReceiptDir, uuid.NewString()+strings.ToLower(filepath.Ext(upload.Filename)))
	if err := s.storage.Save(ctx, name, upload.Data); err != nil {
		s.logger.Error("Failed to archive receipt", "filename", upload.Filename, "error", err)
		return ""
	}
	return name
}

func (s *chatServiceImpl) notify(ctx context.Context, draft report.Draft, reportID string, outcome entryOutcome, rec *expense.Record) {
	if s.notifier == nil {
		return
	}
	notice := port.ReportNotice{
		ReportID:     reportID,
		ReportName:   draft.Name,
		Purpose:      draft.BusinessPurpose,
		EntryCreated: outcome.ok(),
	}
	if rec != nil {
		notice.Vendor = rec.Vendor
		notice.Currency = rec.Currency
		if rec.Amount.Valid {
			notice.Amount = rec.Amount.Decimal.StringFixed(2)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.CallTimeout)
	defer cancel()
	if err := s.notifier.NotifyReportCreated(callCtx, notice); err != nil {
		s.logger.Error("Failed to send report notification", "report_id", reportID, "error", err)
	}
}
