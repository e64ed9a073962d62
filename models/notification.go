package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amirphl/notification-hub/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationStatus is the derived status shown in history
type NotificationStatus string

const (
	NotificationStatusActive   NotificationStatus = "Active"
	NotificationStatusInactive NotificationStatus = "Inactive"
)

// NotificationSpec represents the JSON content of a committed notification
type NotificationSpec struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CTAText     string           `json:"cta_text"`
	CTALink     string           `json:"cta_link"`
	Type        NotificationType `json:"type"`
	Audience    AudienceSpec     `json:"audience"`
	Filters     *FilterSpec      `json:"filters,omitempty"`
}

// Value implements the driver.Valuer interface for NotificationSpec
func (s NotificationSpec) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for NotificationSpec
func (s *NotificationSpec) Scan(value any) error {
	if value == nil {
		*s = NotificationSpec{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into NotificationSpec", value)
	}

	return json.Unmarshal(bytes, s)
}

// Validate checks that the enum fields of a spec are well formed
func (s NotificationSpec) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("invalid notification type %q", s.Type)
	}
	if !s.Audience.SelectionMethod.Valid() {
		return fmt.Errorf("invalid selection method %q", s.Audience.SelectionMethod)
	}
	return nil
}

// Notification is a committed history entry
type Notification struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_notifications_uuid" json:"uuid"`
	Type            NotificationType `gorm:"type:notification_type;not null;default:'standard';index:idx_notifications_type" json:"type"`
	SelectionMethod SelectionMethod  `gorm:"type:notification_selection_method;not null;default:'feed';index:idx_notifications_selection_method" json:"selection_method"`
	Spec            NotificationSpec `gorm:"type:jsonb;not null" json:"spec"`
	IsActive        *bool            `gorm:"not null;default:true;index:idx_notifications_is_active" json:"is_active"`
	CreatedAt       time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_notifications_created_at" json:"created_at"`
	ExpiresAt       time.Time        `gorm:"not null;index:idx_notifications_expires_at" json:"expires_at"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate is called before creating a new record
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	n.PrepareForCommit(utils.UTCNow(), utils.NotificationTTL)
	return nil
}

// BeforeUpdate is called before updating a record
func (n *Notification) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	n.UpdatedAt = &now
	return nil
}

// PrepareForCommit stamps identity, timestamps and the active flag where unset
func (n *Notification) PrepareForCommit(now time.Time, ttl time.Duration) {
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = n.CreatedAt.Add(ttl)
	}
	if n.IsActive == nil {
		n.IsActive = utils.ToPtr(true)
	}
	if n.Type == "" {
		n.Type = n.Spec.Type
	}
	if n.SelectionMethod == "" {
		n.SelectionMethod = n.Spec.Audience.SelectionMethod
	}
}

// NewNotificationFromDraft builds a history entry from the draft content
func NewNotificationFromDraft(d NotificationDraft) *Notification {
	c := d.StripIdentity()
	return &Notification{
		Type:            c.Type,
		SelectionMethod: c.Audience.SelectionMethod,
		Spec: NotificationSpec{
			Title:       c.Title,
			Description: c.Description,
			CTAText:     c.CTAText,
			CTALink:     c.CTALink,
			Type:        c.Type,
			Audience:    c.Audience,
			Filters:     c.Filters,
		},
	}
}

// ToDraft returns the content as a working draft with identity stripped
func (n *Notification) ToDraft() NotificationDraft {
	d := NotificationDraft{
		Title:       n.Spec.Title,
		Description: n.Spec.Description,
		CTAText:     n.Spec.CTAText,
		CTALink:     n.Spec.CTALink,
		Type:        n.Spec.Type,
		Audience:    n.Spec.Audience,
		Filters:     n.Spec.Filters,
	}
	return d.Clone()
}

// AsDraft returns the committed view including identity fields
func (n *Notification) AsDraft() NotificationDraft {
	d := n.ToDraft()
	id := n.UUID.String()
	created := n.CreatedAt
	expires := n.ExpiresAt
	d.ID = &id
	d.CreatedAt = &created
	d.ExpiresAt = &expires
	d.IsActive = utils.ToPtr(utils.IsTrue(n.IsActive))
	return d
}

// Status derives Active/Inactive from the flag and the expiry time
func (n *Notification) Status(now time.Time) NotificationStatus {
	if utils.IsTrue(n.IsActive) && n.ExpiresAt.After(now) {
		return NotificationStatusActive
	}
	return NotificationStatusInactive
}

// NotificationFilter represents filter criteria for notifications
type NotificationFilter struct {
	Title           *string           `json:"title,omitempty"`
	Type            *NotificationType `json:"type,omitempty"`
	SelectionMethod *SelectionMethod  `json:"selection_method,omitempty"`
	ActiveAt        *time.Time        `json:"active_at,omitempty"`
	InactiveAt      *time.Time        `json:"inactive_at,omitempty"`
	CreatedAfter    *time.Time        `json:"created_after,omitempty"`
	CreatedBefore   *time.Time        `json:"created_before,omitempty"`
}
