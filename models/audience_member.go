package models

import (
	"time"

	"github.com/lib/pq"
)

// AudienceMember is a platform user that notifications can target.
// Tags are stored as a PostgreSQL TEXT[] column; UID is the external user id.
type AudienceMember struct {
	ID                int64              `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	UID               string             `gorm:"size:255;not null;uniqueIndex:uk_audience_members_uid" json:"uid"`
	UserType          UserType           `gorm:"size:32;not null;index:idx_audience_members_user_type" json:"user_type"`
	Classification    UserClassification `gorm:"size:32;not null;index:idx_audience_members_classification" json:"classification"`
	Zone              string             `gorm:"size:32;not null;index:idx_audience_members_zone" json:"zone"`
	InventoryActive   bool               `gorm:"not null;default:false" json:"inventory_active"`
	InventoryQuantity int                `gorm:"not null;default:0" json:"inventory_quantity"`
	Tags              pq.StringArray     `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	IsActive          *bool              `gorm:"not null;default:true;index:idx_audience_members_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (AudienceMember) TableName() string {
	return "audience_members"
}

// MemberLead is a lead received by an audience member
type MemberLead struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	MemberID   int64     `gorm:"not null;index:idx_member_leads_member_id" json:"member_id"`
	ReceivedAt time.Time `gorm:"not null;index:idx_member_leads_received_at" json:"received_at"`
}

func (MemberLead) TableName() string {
	return "member_leads"
}

// AudienceMemberFilter represents the feed targeting criteria used for counting.
// Empty slices apply no restriction.
type AudienceMemberFilter struct {
	UserTypes       []UserType
	Classifications []UserClassification
	Zones           []string
	Inventory       *InventoryFilter
	Leads           *LeadsFilter
	LeadsSince      *time.Time
	OnlyActive      bool
}

// NewAudienceMemberFilter builds the counting filter for a feed audience
func NewAudienceMemberFilter(a AudienceSpec, f *FilterSpec, now time.Time) AudienceMemberFilter {
	out := AudienceMemberFilter{OnlyActive: true}
	if !a.AllUserTypes() {
		out.UserTypes = a.UserTypes
	}
	if !a.AllClassifications() {
		out.Classifications = a.UserClassifications
	}
	if !f.AllZones() {
		out.Zones = f.Zones
	}
	if f.HasInventory() && f.Inventory.Active {
		inv := *f.Inventory
		out.Inventory = &inv
	}
	if f.HasLeads() {
		leads := *f.Leads
		since := now.AddDate(0, 0, -leads.AgeInDays)
		out.Leads = &leads
		out.LeadsSince = &since
	}
	return out
}
