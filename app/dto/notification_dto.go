package dto

import (
	"time"
)

// AudienceDTO represents the targeted population of a notification
type AudienceDTO struct {
	SelectionMethod     string   `json:"selection_method" validate:"required,oneof=feed manual query"`
	UserTypes           []string `json:"user_types" validate:"omitempty,dive,user_type"`
	UserClassifications []string `json:"user_classifications" validate:"omitempty,dive,user_classification"`
	UserIDs             []string `json:"user_ids,omitempty" validate:"omitempty,max=100000,dive,required,max=255"`
	UserQuery           *string  `json:"user_query,omitempty" validate:"omitempty,max=10000"`
}

// InventoryFilterDTO narrows the audience by active inventory
type InventoryFilterDTO struct {
	Active   bool `json:"active"`
	Quantity int  `json:"quantity" validate:"min=1,max=100"`
}

// LeadsFilterDTO narrows the audience by recently received leads
type LeadsFilterDTO struct {
	Quantity  int `json:"quantity" validate:"min=1,max=100"`
	AgeInDays int `json:"age_in_days" validate:"min=1,max=365"`
}

// FiltersDTO holds the optional secondary filters
type FiltersDTO struct {
	Inventory *InventoryFilterDTO `json:"inventory,omitempty" validate:"omitempty"`
	Leads     *LeadsFilterDTO     `json:"leads,omitempty" validate:"omitempty"`
	Zones     []string            `json:"zones,omitempty" validate:"omitempty,dive,zone"`
}

// NotificationDraftDTO is the wire shape of a draft. Identity fields are only set on committed entries.
type NotificationDraftDTO struct {
	Title       string      `json:"title" validate:"max=255"`
	Description string      `json:"description" validate:"max=5000"`
	CTAText     string      `json:"cta_text" validate:"max=64"`
	CTALink     string      `json:"cta_link" validate:"omitempty,max=2048"`
	Type        string      `json:"type" validate:"required,oneof=standard golden"`
	Audience    AudienceDTO `json:"audience"`
	Filters     *FiltersDTO `json:"filters,omitempty" validate:"omitempty"`

	ID        *string    `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
}

// CreateNotificationRequest represents a submission of draft content to the history
type CreateNotificationRequest struct {
	NotificationDraftDTO
}

// NotificationItem represents a committed notification in responses
type NotificationItem struct {
	NotificationDraftDTO
	TypeLabel     string `json:"type_label"`
	AudienceLabel string `json:"audience_label"`
	Status        string `json:"status"`
}

// CreateNotificationResponse represents the committed notification
type CreateNotificationResponse struct {
	Message      string           `json:"message"`
	Notification NotificationItem `json:"notification"`
}

// GetNotificationRequest represents the request to read one notification
type GetNotificationRequest struct {
	UUID string `json:"-"`
}

// GetNotificationResponse represents a notification detail view
type GetNotificationResponse struct {
	Message      string           `json:"message"`
	Notification NotificationItem `json:"notification"`
}

// ListNotificationsFilter represents filter criteria for listing notifications in request layer
type ListNotificationsFilter struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Type            *string    `json:"type,omitempty" validate:"omitempty,oneof=standard golden"`
	SelectionMethod *string    `json:"selection_method,omitempty" validate:"omitempty,oneof=feed manual query"`
	Status          *string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	CreatedAfter    *time.Time `json:"created_after,omitempty"`
	CreatedBefore   *time.Time `json:"created_before,omitempty"`
}

// ListNotificationsRequest represents a paginated history request
type ListNotificationsRequest struct {
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
	OrderBy string                   `json:"orderby"` // newest, oldest
	Filter  *ListNotificationsFilter `json:"filter,omitempty" validate:"omitempty"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// ListNotificationsResponse represents a paginated list of notifications
type ListNotificationsResponse struct {
	Message    string             `json:"message"`
	Items      []NotificationItem `json:"items"`
	Pagination PaginationInfo     `json:"pagination"`
}

// ExportNotificationsResponse carries a generated workbook
type ExportNotificationsResponse struct {
	Filename string
	Content  []byte
}

// EstimateAudienceRequest represents a stateless audience count request
type EstimateAudienceRequest struct {
	AudienceDTO
	Filters *FiltersDTO `json:"filters,omitempty" validate:"omitempty"`
}

// EstimateAudienceResponse represents the estimated audience size
type EstimateAudienceResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// OptionDTO is a selectable value with its display label
type OptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// RangeDTO is an inclusive slider range
type RangeDTO struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// AudienceOptionsResponse lists the targeting catalog
type AudienceOptionsResponse struct {
	Message             string              `json:"message"`
	NotificationTypes   []OptionDTO         `json:"notification_types"`
	SelectionMethods    []OptionDTO         `json:"selection_methods"`
	UserTypes           []OptionDTO         `json:"user_types"`
	UserClassifications []OptionDTO         `json:"user_classifications"`
	Zones               []OptionDTO         `json:"zones"`
	Ranges              map[string]RangeDTO `json:"ranges"`
}

// OpenSessionResponse represents a newly opened draft session
type OpenSessionResponse struct {
	Message   string        `json:"message"`
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	ExpiresIn int           `json:"expires_in"`
	Draft     DraftResponse `json:"draft"`
}

// EstimateDTO is the audience estimate state of a session
type EstimateDTO struct {
	Status    string     `json:"status"`
	Count     *int       `json:"count,omitempty"`
	Token     uint64     `json:"token"`
	Method    string     `json:"method,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DraftResponse represents the working draft of a session
type DraftResponse struct {
	SessionID         string               `json:"session_id"`
	Draft             NotificationDraftDTO `json:"draft"`
	ManualUserIDsText string               `json:"manual_user_ids_text"`
	Estimate          EstimateDTO          `json:"estimate"`
	CanSubmit         bool                 `json:"can_submit"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// UpdateDraftRequest replaces each present top-level field
type UpdateDraftRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	CTAText     *string `json:"cta_text,omitempty" validate:"omitempty,max=64"`
	CTALink     *string `json:"cta_link,omitempty" validate:"omitempty,max=2048"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=standard golden"`
}

// UpdateAudienceRequest shallow-merges the present audience keys
type UpdateAudienceRequest struct {
	SelectionMethod     *string   `json:"selection_method,omitempty" validate:"omitempty,oneof=feed manual query"`
	UserTypes           *[]string `json:"user_types,omitempty" validate:"omitempty,dive,user_type"`
	UserClassifications *[]string `json:"user_classifications,omitempty" validate:"omitempty,dive,user_classification"`
	UserIDs             *[]string `json:"user_ids,omitempty" validate:"omitempty,dive,required,max=255"`
	UserQuery           *string   `json:"user_query,omitempty" validate:"omitempty,max=10000"`
}

// SetUserIDsRequest carries the raw comma separated id text
type SetUserIDsRequest struct {
	Text string `json:"text" validate:"max=1000000"`
}

// UpdateInventoryRequest updates inventory fields independently
type UpdateInventoryRequest struct {
	Active   *bool `json:"active,omitempty"`
	Quantity *int  `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
}

// UpdateLeadsRequest updates leads fields independently
type UpdateLeadsRequest struct {
	Quantity  *int `json:"quantity,omitempty" validate:"omitempty,min=1,max=100"`
	AgeInDays *int `json:"age_in_days,omitempty" validate:"omitempty,min=1,max=365"`
}

// SetAudienceOptionRequest checks or unchecks one user type or classification
type SetAudienceOptionRequest struct {
	Value   string `json:"-"`
	Checked *bool  `json:"checked" validate:"required"`
}

// ToggleZoneRequest toggles one zone in the draft filters
type ToggleZoneRequest struct {
	Zone string `json:"-"`
}

// PreviewCTA is the call to action shown in the preview
type PreviewCTA struct {
	Text string `json:"text"`
	Link string `json:"link"`
}

// PreviewResponse is the live preview of the working draft
type PreviewResponse struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	CTA             *PreviewCTA `json:"cta,omitempty"`
	Type            string      `json:"type"`
	TypeLabel       string      `json:"type_label"`
	StyleClass      string      `json:"style_class"`
	AudienceSummary []string    `json:"audience_summary"`
	CanSubmit       bool        `json:"can_submit"`
}

// EstimateDraftRequest starts an estimate of the session audience
type EstimateDraftRequest struct {
	Async bool `json:"async"`
}

// EstimateDraftResponse reports the estimate after the request settles
type EstimateDraftResponse struct {
	Message  string      `json:"message"`
	Estimate EstimateDTO `json:"estimate"`
	Stale    bool        `json:"stale"`
}

// SubmitDraftResponse represents the committed notification and the reset draft
type SubmitDraftResponse struct {
	Message      string           `json:"message"`
	Notification NotificationItem `json:"notification"`
	Draft        DraftResponse    `json:"draft"`
}

// CloneNotificationRequest represents the request to copy a notification into the session draft
type CloneNotificationRequest struct {
	UUID string `json:"-"`
}

// CloneNotificationResponse represents the re-seeded draft
type CloneNotificationResponse struct {
	Message string        `json:"message"`
	Draft   DraftResponse `json:"draft"`
}
