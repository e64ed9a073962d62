package models

import (
	"slices"
	"strings"
	"time"
)

// Unrestricted reports whether a targeting collection of length n applies no restriction.
// Absent and empty collections both mean "everyone".
func Unrestricted(n int) bool {
	return n == 0
}

// AudienceSpec describes the targeted population. Fields belonging to the inactive
// selection methods stay populated so switching back restores them.
type AudienceSpec struct {
	SelectionMethod     SelectionMethod      `json:"selection_method"`
	UserTypes           []UserType           `json:"user_types"`
	UserClassifications []UserClassification `json:"user_classifications"`
	UserIDs             []string             `json:"user_ids,omitempty"`
	UserQuery           *string              `json:"user_query,omitempty"`
}

// AllUserTypes reports whether the feed targets every user type
func (a AudienceSpec) AllUserTypes() bool {
	return Unrestricted(len(a.UserTypes))
}

// AllClassifications reports whether the feed targets every classification
func (a AudienceSpec) AllClassifications() bool {
	return Unrestricted(len(a.UserClassifications))
}

// HasUserIDs reports whether a manual id list is present
func (a AudienceSpec) HasUserIDs() bool {
	return !Unrestricted(len(a.UserIDs))
}

// HasUserQuery reports whether a non-blank query is present
func (a AudienceSpec) HasUserQuery() bool {
	return a.UserQuery != nil && strings.TrimSpace(*a.UserQuery) != ""
}

// Active returns a copy holding only the fields used by the current selection method
func (a AudienceSpec) Active() AudienceSpec {
	out := AudienceSpec{SelectionMethod: a.SelectionMethod, UserTypes: []UserType{}, UserClassifications: []UserClassification{}}
	switch a.SelectionMethod {
	case SelectionMethodFeed:
		out.UserTypes = slices.Clone(a.UserTypes)
		out.UserClassifications = slices.Clone(a.UserClassifications)
	case SelectionMethodManual:
		out.UserIDs = slices.Clone(a.UserIDs)
	case SelectionMethodQuery:
		out.UserQuery = clonePtr(a.UserQuery)
	}
	return out
}

// Clone returns a deep copy of the audience
func (a AudienceSpec) Clone() AudienceSpec {
	out := a
	out.UserTypes = cloneNonNil(a.UserTypes)
	out.UserClassifications = cloneNonNil(a.UserClassifications)
	out.UserIDs = slices.Clone(a.UserIDs)
	out.UserQuery = clonePtr(a.UserQuery)
	return out
}

// InventoryFilter narrows the audience by active inventory
type InventoryFilter struct {
	Active   bool `json:"active"`
	Quantity int  `json:"quantity"`
}

// LeadsFilter narrows the audience by recent leads
type LeadsFilter struct {
	Quantity  int `json:"quantity"`
	AgeInDays int `json:"age_in_days"`
}

// FilterSpec holds the optional secondary filters
type FilterSpec struct {
	Inventory *InventoryFilter `json:"inventory,omitempty"`
	Leads     *LeadsFilter     `json:"leads,omitempty"`
	Zones     []string         `json:"zones,omitempty"`
}

// AllZones reports whether no zone restriction applies
func (f *FilterSpec) AllZones() bool {
	return f == nil || Unrestricted(len(f.Zones))
}

// HasInventory reports whether the inventory filter is present
func (f *FilterSpec) HasInventory() bool {
	return f != nil && f.Inventory != nil
}

// HasLeads reports whether the leads filter is present
func (f *FilterSpec) HasLeads() bool {
	return f != nil && f.Leads != nil
}

// IsEmpty reports whether the filters narrow nothing
func (f *FilterSpec) IsEmpty() bool {
	return !f.HasInventory() && !f.HasLeads() && f.AllZones()
}

// Clone returns a deep copy of the filters
func (f *FilterSpec) Clone() *FilterSpec {
	if f == nil {
		return nil
	}
	return &FilterSpec{
		Inventory: clonePtr(f.Inventory),
		Leads:     clonePtr(f.Leads),
		Zones:     slices.Clone(f.Zones),
	}
}

// NotificationDraft is the in-progress notification record. Identity and timestamp
// fields are set only on committed history entries.
type NotificationDraft struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CTAText     string           `json:"cta_text"`
	CTALink     string           `json:"cta_link"`
	Type        NotificationType `json:"type"`
	Audience    AudienceSpec     `json:"audience"`
	Filters     *FilterSpec      `json:"filters,omitempty"`

	ID        *string    `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
}

// NewDraft returns the canonical default draft
func NewDraft(defaultCTAText string) NotificationDraft {
	return NotificationDraft{
		CTAText: defaultCTAText,
		Type:    NotificationTypeStandard,
		Audience: AudienceSpec{
			SelectionMethod:     SelectionMethodFeed,
			UserTypes:           []UserType{},
			UserClassifications: []UserClassification{},
		},
	}
}

// CanSubmit reports whether the draft passes submission gating
func (d NotificationDraft) CanSubmit() bool {
	return d.Title != "" && d.Description != ""
}

// StripIdentity returns a copy without id, timestamps and active flag
func (d NotificationDraft) StripIdentity() NotificationDraft {
	out := d.Clone()
	out.ID = nil
	out.CreatedAt = nil
	out.ExpiresAt = nil
	out.IsActive = nil
	return out
}

// Clone returns a deep copy of the draft
func (d NotificationDraft) Clone() NotificationDraft {
	out := d
	out.Audience = d.Audience.Clone()
	out.Filters = d.Filters.Clone()
	out.ID = clonePtr(d.ID)
	out.CreatedAt = clonePtr(d.CreatedAt)
	out.ExpiresAt = clonePtr(d.ExpiresAt)
	out.IsActive = clonePtr(d.IsActive)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// cloneNonNil copies s and never returns nil, so set fields keep serializing as []
func cloneNonNil[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
