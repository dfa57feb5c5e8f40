package port

import (
	"context"
	"errors"
	"time"

	"github.com/akhil1198/ER/internal/domain/conversation"
	"github.com/akhil1198/ER/internal/domain/entity"
)

// ErrSessionNotFound is returned by SessionStore.Get for unknown ids
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists conversation sessions keyed by id
type SessionStore interface {
	Get(ctx context.Context, id string) (*conversation.Session, error)
	Save(ctx context.Context, session *conversation.Session) error
	Delete(ctx context.Context, id string) error
	ListIdle(ctx context.Context, cutoff time.Time) ([]string, error)
	Close() error
}

// SubmissionRepository records every report and entry creation attempt
type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
	GetByID(ctx context.Context, id int64) (*entity.Submission, error)
	List(ctx context.Context, filter entity.SubmissionFilter) ([]*entity.Submission, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
