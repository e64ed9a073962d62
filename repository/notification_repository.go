package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrMalformedNotification is returned when a stored spec cannot be decoded
var ErrMalformedNotification = errors.New("malformed notification spec")

// notificationRow mirrors the notifications table with the spec left undecoded
type notificationRow struct {
	ID              uint
	UUID            uuid.UUID
	Type            models.NotificationType
	SelectionMethod models.SelectionMethod
	Spec            []byte
	IsActive        *bool
	CreatedAt       time.Time
	ExpiresAt       time.Time
	UpdatedAt       *time.Time
}

func (row notificationRow) decode() (*models.Notification, error) {
	n := &models.Notification{
		ID:              row.ID,
		UUID:            row.UUID,
		Type:            row.Type,
		SelectionMethod: row.SelectionMethod,
		IsActive:        row.IsActive,
		CreatedAt:       row.CreatedAt,
		ExpiresAt:       row.ExpiresAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Spec, &n.Spec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedNotification, row.UUID, err)
	}
	if err := n.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedNotification, row.UUID, err)
	}
	return n, nil
}

// NotificationRepositoryImpl implements the NotificationRepository interface
type NotificationRepositoryImpl struct {
	*BaseRepository[models.Notification, models.NotificationFilter]
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Notification, models.NotificationFilter](db),
	}
}

// ByUUID retrieves a notification by UUID
func (r *NotificationRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Notification, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	db := r.getDB(ctx)

	var rows []notificationRow
	err = db.Model(&models.Notification{}).
		Where("uuid = ?", parsedUUID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rows[0].decode()
}

// DeactivateExpired flips is_active off for every entry whose expiry has passed
func (r *NotificationRepositoryImpl) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Notification{}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Updates(map[string]any{
			"is_active":  false,
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ByFilter retrieves notifications based on filter criteria
func (r *NotificationRepositoryImpl) ByFilter(ctx context.Context, filter models.NotificationFilter, orderBy string, limit, offset int) ([]*models.Notification, error) {
	db := r.getDB(ctx)

	var rows []notificationRow
	query := r.applyFilter(db.Model(&models.Notification{}), filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&rows).Error
	if err != nil {
		return nil, err
	}

	notifications := make([]*models.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.decode()
		if err != nil {
			log.Printf("skipping notification: %v", err)
			continue
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// Count returns the number of notifications matching the filter
func (r *NotificationRepositoryImpl) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Notification{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *NotificationRepositoryImpl) applyFilter(db *gorm.DB, filter models.NotificationFilter) *gorm.DB {
	if filter.Title != nil {
		db = db.Where("spec->>'title' ILIKE ?", "%"+*filter.Title+"%")
	}
	if filter.Type != nil {
		db = db.Where("type = ?", *filter.Type)
	}
	if filter.SelectionMethod != nil {
		db = db.Where("selection_method = ?", *filter.SelectionMethod)
	}
	if filter.ActiveAt != nil {
		db = db.Where("is_active = ? AND expires_at > ?", true, *filter.ActiveAt)
	}
	if filter.InactiveAt != nil {
		db = db.Where("(is_active = ? OR expires_at <= ?)", false, *filter.InactiveAt)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
