// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/notification-hub/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
}

// NotificationRepository defines operations for committed notifications
type NotificationRepository interface {
	Repository[models.Notification, models.NotificationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Notification, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// AudienceMemberRepository defines the audience sizing operations
type AudienceMemberRepository interface {
	CountByFilter(ctx context.Context, filter models.AudienceMemberFilter) (int64, error)
	CountByQuery(ctx context.Context, query string, timeout time.Duration) (int64, error)
}

// DraftStore keeps draft sessions. Update runs fn atomically for one session and bumps its Revision.
type DraftStore interface {
	Get(ctx context.Context, id string) (*models.DraftSession, error)
	Create(ctx context.Context, session *models.DraftSession) error
	Update(ctx context.Context, id string, fn func(*models.DraftSession) error) (*models.DraftSession, error)
	Delete(ctx context.Context, id string) error
}
