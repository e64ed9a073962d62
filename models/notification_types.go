// Package models contains domain entities and the notification draft model
package models

import (
	"database/sql/driver"
	"fmt"
)

// NotificationType represents the visual/priority tier of a notification
type NotificationType string

const (
	NotificationTypeStandard NotificationType = "standard"
	NotificationTypeGolden   NotificationType = "golden"
)

// String returns the string representation of the type
func (t NotificationType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeStandard, NotificationTypeGolden:
		return true
	default:
		return false
	}
}

// Label returns the display name shown in history and preview
func (t NotificationType) Label() string {
	if t == NotificationTypeGolden {
		return "Golden"
	}
	return "Standard"
}

// StyleClass returns the preview style class for the type
func (t NotificationType) StyleClass() string {
	if t == NotificationTypeGolden {
		return "notification-golden"
	}
	return "notification-standard"
}

// Scan implements the sql.Scanner interface for NotificationType
func (t *NotificationType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = NotificationType(v)
	case []byte:
		*t = NotificationType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NotificationType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for NotificationType
func (t NotificationType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid NotificationType: %s", t)
	}
	return string(t), nil
}

// SelectionMethod is the audience targeting strategy
type SelectionMethod string

const (
	SelectionMethodFeed   SelectionMethod = "feed"
	SelectionMethodManual SelectionMethod = "manual"
	SelectionMethodQuery  SelectionMethod = "query"
)

// String returns the string representation of the method
func (m SelectionMethod) String() string {
	return string(m)
}

// Valid checks if the method is valid
func (m SelectionMethod) Valid() bool {
	switch m {
	case SelectionMethodFeed, SelectionMethodManual, SelectionMethodQuery:
		return true
	default:
		return false
	}
}

// Label returns the display name used by the history view
func (m SelectionMethod) Label() string {
	switch m {
	case SelectionMethodFeed:
		return "User Feed"
	case SelectionMethodManual:
		return "Manual Selection"
	case SelectionMethodQuery:
		return "SQL Query"
	default:
		return "Unknown"
	}
}

// Scan implements the sql.Scanner interface for SelectionMethod
func (m *SelectionMethod) Scan(value any) error {
	if value == nil {
		*m = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*m = SelectionMethod(v)
	case []byte:
		*m = SelectionMethod(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SelectionMethod", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SelectionMethod
func (m SelectionMethod) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid SelectionMethod: %s", m)
	}
	return string(m), nil
}

// UserType is a member category used by feed targeting
type UserType string

const (
	UserTypeOwner            UserType = "owner"
	UserTypeIndependentAgent UserType = "independent-agent"
	UserTypeMediumBroker     UserType = "medium-broker"
	UserTypeBigBroker        UserType = "big-broker"
)

// Valid checks if the user type is valid
func (u UserType) Valid() bool {
	_, ok := userTypeLabels[u]
	return ok
}

// Label returns the display name of the user type
func (u UserType) Label() string {
	return userTypeLabels[u]
}

// UserClassification is a member tier used by feed targeting
type UserClassification string

const (
	UserClassificationStandard UserClassification = "standard"
	UserClassificationPremium  UserClassification = "premium"
	UserClassificationVIP      UserClassification = "vip"
)

// Valid checks if the classification is valid
func (c UserClassification) Valid() bool {
	_, ok := classificationLabels[c]
	return ok
}

// Label returns the display name of the classification
func (c UserClassification) Label() string {
	return classificationLabels[c]
}

var userTypeLabels = map[UserType]string{
	UserTypeOwner:            "Property Owner",
	UserTypeIndependentAgent: "Independent Agent",
	UserTypeMediumBroker:     "Medium Broker",
	UserTypeBigBroker:        "Big Broker",
}

var classificationLabels = map[UserClassification]string{
	UserClassificationStandard: "Standard",
	UserClassificationPremium:  "Premium",
	UserClassificationVIP:      "VIP",
}

// UserTypes lists every user type in display order
func UserTypes() []UserType {
	return []UserType{UserTypeOwner, UserTypeIndependentAgent, UserTypeMediumBroker, UserTypeBigBroker}
}

// UserClassifications lists every classification in display order
func UserClassifications() []UserClassification {
	return []UserClassification{UserClassificationStandard, UserClassificationPremium, UserClassificationVIP}
}

// Zone is an entry of the fixed geographic catalog
type Zone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var zoneCatalog = []Zone{
	{ID: "north", Name: "North Region"},
	{ID: "south", Name: "South Region"},
	{ID: "east", Name: "East Region"},
	{ID: "west", Name: "West Region"},
	{ID: "central", Name: "Central Region"},
}

// Zones returns a copy of the zone catalog
func Zones() []Zone {
	out := make([]Zone, len(zoneCatalog))
	copy(out, zoneCatalog)
	return out
}

// IsKnownZone reports whether id belongs to the zone catalog
func IsKnownZone(id string) bool {
	for _, z := range zoneCatalog {
		if z.ID == id {
			return true
		}
	}
	return false
}

// Operator input ranges for the secondary filters
const (
	MinFilterQuantity = 1
	MaxFilterQuantity = 100
	MinLeadsAgeInDays = 1
	MaxLeadsAgeInDays = 365

	DefaultInventoryQuantity = 1
	DefaultLeadsQuantity     = 1
	DefaultLeadsAgeInDays    = 30
)
