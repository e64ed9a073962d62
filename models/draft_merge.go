package models

import (
	"slices"
	"strings"
)

// DraftField names a top-level editable field of a draft
type DraftField string

const (
	DraftFieldTitle       DraftField = "title"
	DraftFieldDescription DraftField = "description"
	DraftFieldCTAText     DraftField = "cta_text"
	DraftFieldCTALink     DraftField = "cta_link"
	DraftFieldType        DraftField = "type"
)

// Valid checks if the field is editable
func (f DraftField) Valid() bool {
	switch f {
	case DraftFieldTitle, DraftFieldDescription, DraftFieldCTAText, DraftFieldCTALink, DraftFieldType:
		return true
	default:
		return false
	}
}

// AudiencePatch is a partial audience. Nil fields keep the current value.
// A UserIDs pointer to an empty list and a UserQuery pointer to "" both set the field absent.
type AudiencePatch struct {
	SelectionMethod     *SelectionMethod
	UserTypes           *[]UserType
	UserClassifications *[]UserClassification
	UserIDs             *[]string
	UserQuery           *string
}

// FiltersPatch is a partial filter set. A present key replaces that whole sub-object.
type FiltersPatch struct {
	Inventory *InventoryFilter
	Leads     *LeadsFilter
	Zones     *[]string
}

// InventoryPatch updates inventory fields independently
type InventoryPatch struct {
	Active   *bool
	Quantity *int
}

// LeadsPatch updates leads fields independently
type LeadsPatch struct {
	Quantity  *int
	AgeInDays *int
}

// UpdateField replaces one top-level field. Values are not validated here.
func UpdateField(d NotificationDraft, field DraftField, value string) NotificationDraft {
	out := d.Clone()
	switch field {
	case DraftFieldTitle:
		out.Title = value
	case DraftFieldDescription:
		out.Description = value
	case DraftFieldCTAText:
		out.CTAText = value
	case DraftFieldCTALink:
		out.CTALink = value
	case DraftFieldType:
		out.Type = NotificationType(value)
	}
	return out
}

// UpdateAudience shallow-merges p over the draft audience
func UpdateAudience(d NotificationDraft, p AudiencePatch) NotificationDraft {
	out := d.Clone()
	a := &out.Audience
	if p.SelectionMethod != nil {
		a.SelectionMethod = *p.SelectionMethod
	}
	if p.UserTypes != nil {
		a.UserTypes = dedupe(*p.UserTypes)
	}
	if p.UserClassifications != nil {
		a.UserClassifications = dedupe(*p.UserClassifications)
	}
	if p.UserIDs != nil {
		if len(*p.UserIDs) == 0 {
			a.UserIDs = nil
		} else {
			a.UserIDs = slices.Clone(*p.UserIDs)
		}
	}
	if p.UserQuery != nil {
		if *p.UserQuery == "" {
			a.UserQuery = nil
		} else {
			q := *p.UserQuery
			a.UserQuery = &q
		}
	}
	return out
}

// UpdateFilters shallow-merges p over the draft filters, creating them when absent
func UpdateFilters(d NotificationDraft, p FiltersPatch) NotificationDraft {
	out := d.Clone()
	if out.Filters == nil {
		out.Filters = &FilterSpec{}
	}
	if p.Inventory != nil {
		inv := *p.Inventory
		out.Filters.Inventory = &inv
	}
	if p.Leads != nil {
		leads := *p.Leads
		out.Filters.Leads = &leads
	}
	if p.Zones != nil {
		if Unrestricted(len(*p.Zones)) {
			out.Filters.Zones = nil
		} else {
			out.Filters.Zones = slices.Clone(*p.Zones)
		}
	}
	return out
}

// ClearFilters removes every secondary filter
func ClearFilters(d NotificationDraft) NotificationDraft {
	out := d.Clone()
	out.Filters = nil
	return out
}

// MergeInventory applies p over current, falling back to defaults for fields never set
func MergeInventory(current *InventoryFilter, p InventoryPatch) InventoryFilter {
	out := InventoryFilter{Active: false, Quantity: DefaultInventoryQuantity}
	if current != nil {
		out = *current
	}
	if p.Active != nil {
		out.Active = *p.Active
	}
	if p.Quantity != nil {
		out.Quantity = *p.Quantity
	}
	return out
}

// MergeLeads applies p over current, falling back to defaults for fields never set
func MergeLeads(current *LeadsFilter, p LeadsPatch) LeadsFilter {
	out := LeadsFilter{Quantity: DefaultLeadsQuantity, AgeInDays: DefaultLeadsAgeInDays}
	if current != nil {
		out = *current
	}
	if p.Quantity != nil {
		out.Quantity = *p.Quantity
	}
	if p.AgeInDays != nil {
		out.AgeInDays = *p.AgeInDays
	}
	return out
}

// ToggleZone removes id when present and appends it otherwise.
// An empty result is returned as nil.
func ToggleZone(zones []string, id string) []string {
	var out []string
	if i := slices.Index(zones, id); i >= 0 {
		out = slices.Delete(slices.Clone(zones), i, i+1)
	} else {
		out = append(slices.Clone(zones), id)
	}
	if Unrestricted(len(out)) {
		return nil
	}
	return out
}

// ParseUserIDList splits raw on commas, trims tokens and drops empty ones.
// Order and duplicates are kept; nil is returned when nothing survives.
func ParseUserIDList(raw string) []string {
	var ids []string
	for _, token := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(token); t != "" {
			ids = append(ids, t)
		}
	}
	return ids
}

// SetUserType adds t once when checked and removes it otherwise
func SetUserType(types []UserType, t UserType, checked bool) []UserType {
	return setMember(types, t, checked)
}

// SetClassification adds c once when checked and removes it otherwise
func SetClassification(classes []UserClassification, c UserClassification, checked bool) []UserClassification {
	return setMember(classes, c, checked)
}

func setMember[T comparable](set []T, v T, checked bool) []T {
	out := cloneNonNil(set)
	if checked {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
		return out
	}
	return slices.DeleteFunc(out, func(x T) bool { return x == v })
}

func dedupe[T comparable](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
