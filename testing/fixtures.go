package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/utils"
	"github.com/google/uuid"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestNotification commits a notification built from a minimal valid draft
func (tf *TestFixtures) CreateTestNotification(mutate func(d *models.NotificationDraft)) (*models.Notification, error) {
	d := models.NewDraft("Learn More")
	d.Title = fmt.Sprintf("Test notification %d", rand.Intn(1000000))
	d.Description = "Test description"
	if mutate != nil {
		mutate(&d)
	}

	n := models.NewNotificationFromDraft(d)
	if err := tf.DB.DB.Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// CreateExpiredNotification commits a notification whose expiry has already passed
func (tf *TestFixtures) CreateExpiredNotification() (*models.Notification, error) {
	created := utils.UTCNow().Add(-31 * 24 * time.Hour)
	d := models.NewDraft("")
	d.Title = "Expired"
	d.Description = "Expired description"

	n := models.NewNotificationFromDraft(d)
	n.CreatedAt = created
	n.ExpiresAt = created.Add(utils.NotificationTTL)
	if err := tf.DB.DB.Create(n).Error; err != nil {
		return nil, fmt.Errorf("failed to create expired notification: %w", err)
	}
	return n, nil
}

// CreateTestAudienceMember inserts an active member with the given attributes
func (tf *TestFixtures) CreateTestAudienceMember(userType models.UserType, class models.UserClassification, zone string) (*models.AudienceMember, error) {
	member := &models.AudienceMember{
		UID:            uuid.NewString(),
		UserType:       userType,
		Classification: class,
		Zone:           zone,
		Tags:           []string{},
		IsActive:       utils.ToPtr(true),
	}
	if err := tf.DB.DB.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create audience member: %w", err)
	}
	return member, nil
}

// AddLeads records n leads for member received age ago
func (tf *TestFixtures) AddLeads(member *models.AudienceMember, n int, age time.Duration) error {
	received := utils.UTCNow().Add(-age)
	for range n {
		lead := &models.MemberLead{MemberID: member.ID, ReceivedAt: received}
		if err := tf.DB.DB.Create(lead).Error; err != nil {
			return fmt.Errorf("failed to create member lead: %w", err)
		}
	}
	return nil
}
