package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
	"github.com/akhil1198/ER/internal/domain/entity"
)

const submissionColumns = `id, session_id, kind, status, report_id, report_name, entry_id,
	expense_type_code, vendor, amount, currency, receipt_file, error_message, created_at`

// defaultListLimit caps listings that set no limit
const defaultListLimit = 1000

// SubmissionRepository implements port.SubmissionRepository on SQLite
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a submission and sets its ID and CreatedAt
func (r *SubmissionRepository) Create(ctx context.Context, s *entity.Submission) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions (
			session_id, kind, status, report_id, report_name, entry_id,
			expense_type_code, vendor, amount, currency, receipt_file, error_message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID,
		s.Kind,
		s.Status,
		nullString(s.ReportID),
		nullString(s.ReportName),
		nullString(s.EntryID),
		nullString(s.ExpenseTypeCode),
		nullString(s.Vendor),
		s.Amount.String(),
		nullString(s.Currency),
		nullString(s.ReceiptFile),
		nullString(s.ErrorMessage),
		s.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create submission",
			zap.String("kind", s.Kind),
			zap.String("report_id", s.ReportID),
			zap.Error(err))
		return fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return nil
}

// GetByID returns nil, nil when no submission has the id
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*entity.Submission, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+submissionColumns+" FROM submissions WHERE id = ?", id)

	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// List returns submissions newest first
func (r *SubmissionRepository) List(ctx context.Context, filter entity.SubmissionFilter) ([]*entity.Submission, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := "SELECT " + submissionColumns + " FROM submissions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of submissions per status
func (r *SubmissionRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM submissions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*entity.Submission, error) {
	var (
		s                                     entity.Submission
		reportID, reportName, entryID, code   sql.NullString
		vendor, currency, receipt, errMessage sql.NullString
		amount                                string
	)
	err := row.Scan(
		&s.ID, &s.SessionID, &s.Kind, &s.Status,
		&reportID, &reportName, &entryID, &code,
		&vendor, &amount, &currency, &receipt, &errMessage,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.ReportID = reportID.String
	s.ReportName = reportName.String
	s.EntryID = entryID.String
	s.ExpenseTypeCode = code.String
	s.Vendor = vendor.String
	s.Currency = currency.String
	s.ReceiptFile = receipt.String
	s.ErrorMessage = errMessage.String
	if d, err := decimal.NewFromString(amount); err == nil {
		s.Amount = d
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
