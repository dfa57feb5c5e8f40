package service

import (
	"context"
	"sync"
	"time"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/conversation"
	"github.com/akhil1198/ER/internal/domain/entity"
	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*conversation.Session
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*conversation.Session)}
}

func (m *mockSessionStore) Get(ctx context.Context, id string) (*conversation.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, port.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *mockSessionStore) Save(ctx context.Context, s *conversation.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) ListIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	return nil, nil
}

func (m *mockSessionStore) Close() error { return nil }

func (m *mockSessionStore) put(s *conversation.Session) {
	m.sessions[s.ID] = s.Clone()
}

type mockExtractor struct {
	extractFunc func(ctx context.Context, data []byte, mimeType string) (*expense.Record, error)
}

func (m *mockExtractor) Extract(ctx context.Context, data []byte, mimeType string) (*expense.Record, error) {
	if m.extractFunc != nil {
		return m.extractFunc(ctx, data, mimeType)
	}
	return &expense.Record{}, nil
}

func (m *mockExtractor) Name() string { return "mock" }

type mockReportClient struct {
	listReportsFunc  func(ctx context.Context, limit int) ([]report.Summary, error)
	createReportFunc func(ctx context.Context, req report.CreateRequest) (string, error)
	createEntryFunc  func(ctx context.Context, entry *expense.Payload) (string, error)

	mu      sync.Mutex
	created []report.CreateRequest
	entries []*expense.Payload
}

func (m *mockReportClient) ListReports(ctx context.Context, limit int) ([]report.Summary, error) {
	if m.listReportsFunc != nil {
		return m.listReportsFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockReportClient) CreateReport(ctx context.Context, req report.CreateRequest) (string, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	m.mu.Unlock()
	if m.createReportFunc != nil {
		return m.createReportFunc(ctx, req)
	}
	return "RPT-NEW", nil
}

func (m *mockReportClient) CreateEntry(ctx context.Context, entry *expense.Payload) (string, error) {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	if m.createEntryFunc != nil {
		return m.createEntryFunc(ctx, entry)
	}
	return "ENT-1", nil
}

type mockSubmissionRepo struct {
	mu          sync.Mutex
	submissions []*entity.Submission
	createErr   error
}

func (m *mockSubmissionRepo) Create(ctx context.Context, s *entity.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = int64(len(m.submissions) + 1)
	m.submissions = append(m.submissions, s)
	return nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id int64) (*entity.Submission, error) {
	for _, s := range m.submissions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter entity.SubmissionFilter) ([]*entity.Submission, error) {
	return m.submissions, nil
}

func (m *mockSubmissionRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, s := range m.submissions {
		counts[s.Status]++
	}
	return counts, nil
}

type mockNotifier struct {
	notices []port.ReportNotice
}

func (m *mockNotifier) NotifyReportCreated(ctx context.Context, notice port.ReportNotice) error {
	m.notices = append(m.notices, notice)
	return nil
}

type mockStorage struct {
	saved map[string][]byte
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.saved[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.saved[path]
	return ok
}

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestMapper() *expense.Mapper {
	resolver := taxonomy.NewResolver(taxonomy.DefaultTable(), taxonomy.DefaultAliases())
	return expense.NewMapper(resolver, taxonomy.NewPaymentResolver(""),
		expense.WithClock(func() time.Time { return testNow }))
}
