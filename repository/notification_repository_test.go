package repository

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/notification-hub/models"
	testingutil "github.com/amirphl/notification-hub/testing"
	"github.com/amirphl/notification-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	testingutil.RunWithDB(t, func(db *testingutil.TestDB) error {
		repo := NewNotificationRepository(db.DB)
		fixtures := testingutil.NewTestFixtures(db)
		ctx := context.Background()

		t.Run("save stamps identity and expiry", func(t *testing.T) {
			d := models.NewDraft("")
			d.Title = "Sale"
			d.Description = "Big sale"
			n := models.NewNotificationFromDraft(d)

			require.NoError(t, repo.Save(ctx, n))
			assert.NotZero(t, n.ID)
			assert.True(t, utils.IsTrue(n.IsActive))
			assert.WithinDuration(t, n.CreatedAt.Add(30*24*time.Hour), n.ExpiresAt, time.Second)

			found, err := repo.ByUUID(ctx, n.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Sale", found.Spec.Title)
			assert.Equal(t, models.SelectionMethodFeed, found.Spec.Audience.SelectionMethod)
		})

		t.Run("unknown uuid", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, "6f1f0e1e-0000-4000-8000-000000000000")
			require.NoError(t, err)
			assert.Nil(t, found)

			_, err = repo.ByUUID(ctx, "not-a-uuid")
			assert.Error(t, err)
		})

		t.Run("filter and order", func(t *testing.T) {
			require.NoError(t, db.ClearAllTables())

			golden, err := fixtures.CreateTestNotification(func(d *models.NotificationDraft) {
				d.Title = "Golden offer"
				d.Type = models.NotificationTypeGolden
			})
			require.NoError(t, err)
			_, err = fixtures.CreateTestNotification(func(d *models.NotificationDraft) {
				d.Title = "Manual reminder"
				d.Audience.SelectionMethod = models.SelectionMethodManual
				d.Audience.UserIDs = []string{"1", "2"}
			})
			require.NoError(t, err)
			expired, err := fixtures.CreateExpiredNotification()
			require.NoError(t, err)

			goldenType := models.NotificationTypeGolden
			rows, err := repo.ByFilter(ctx, models.NotificationFilter{Type: &goldenType}, "created_at DESC", 10, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, golden.UUID, rows[0].UUID)

			title := "reminder"
			count, err := repo.Count(ctx, models.NotificationFilter{Title: &title})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			now := utils.UTCNow()
			active, err := repo.Count(ctx, models.NotificationFilter{ActiveAt: &now})
			require.NoError(t, err)
			assert.Equal(t, int64(2), active)

			inactive, err := repo.ByFilter(ctx, models.NotificationFilter{InactiveAt: &now}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, inactive, 1)
			assert.Equal(t, expired.UUID, inactive[0].UUID)

			oldest, err := repo.ByFilter(ctx, models.NotificationFilter{}, "created_at ASC", 1, 0)
			require.NoError(t, err)
			require.Len(t, oldest, 1)
			assert.Equal(t, expired.UUID, oldest[0].UUID)

			dayAgo := now.Add(-24 * time.Hour)
			recent, err := repo.Count(ctx, models.NotificationFilter{CreatedAfter: &dayAgo})
			require.NoError(t, err)
			assert.Equal(t, int64(2), recent)

			older, err := repo.ByFilter(ctx, models.NotificationFilter{CreatedBefore: &dayAgo}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, older, 1)
			assert.Equal(t, expired.UUID, older[0].UUID)
		})

		t.Run("deactivate expired", func(t *testing.T) {
			require.NoError(t, db.ClearAllTables())

			_, err := fixtures.CreateTestNotification(nil)
			require.NoError(t, err)
			expired, err := fixtures.CreateExpiredNotification()
			require.NoError(t, err)

			n, err := repo.DeactivateExpired(ctx, utils.UTCNow())
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			found, err := repo.ByUUID(ctx, expired.UUID.String())
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(found.IsActive))
			assert.NotNil(t, found.UpdatedAt)

			n, err = repo.DeactivateExpired(ctx, utils.UTCNow())
			require.NoError(t, err)
			assert.Zero(t, n)
		})

		t.Run("malformed spec is skipped on listing", func(t *testing.T) {
			require.NoError(t, db.ClearAllTables())

			good, err := fixtures.CreateTestNotification(nil)
			require.NoError(t, err)
			bad, err := fixtures.CreateTestNotification(nil)
			require.NoError(t, err)
			require.NoError(t, db.DB.Exec(
				`UPDATE notifications SET spec = jsonb_set(spec, '{type}', '"platinum"') WHERE id = ?`, bad.ID).Error)

			rows, err := repo.ByFilter(ctx, models.NotificationFilter{}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, good.UUID, rows[0].UUID)

			_, err = repo.ByUUID(ctx, bad.UUID.String())
			assert.ErrorIs(t, err, ErrMalformedNotification)
		})

		t.Run("transaction rollback", func(t *testing.T) {
			require.NoError(t, db.ClearAllTables())

			err := WithTransaction(ctx, db.DB, func(txCtx context.Context) error {
				d := models.NewDraft("")
				d.Title = "Rolled back"
				d.Description = "x"
				if err := repo.Save(txCtx, models.NewNotificationFromDraft(d)); err != nil {
					return err
				}
				return assert.AnError
			})
			assert.ErrorIs(t, err, assert.AnError)

			count, err := repo.Count(ctx, models.NotificationFilter{})
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		return nil
	})
}
