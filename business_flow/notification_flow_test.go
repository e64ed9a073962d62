package businessflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/app/services"
	"github.com/amirphl/notification-hub/config"
	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/repository"
	"github.com/amirphl/notification-hub/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newNotificationFlowForTest(repo *fakeNotificationRepo, estimator services.AudienceEstimator, now time.Time) *NotificationFlowImpl {
	flow := NewNotificationFlow(repo, estimator, config.NotificationConfig{
		TTL:         utils.NotificationTTL,
		PageSize:    10,
		ExportLimit: 100,
	}).(*NotificationFlowImpl)
	flow.now = func() time.Time { return now }
	return flow
}

func submittedDraft(title string) dto.NotificationDraftDTO {
	return dto.NotificationDraftDTO{
		Title:       title,
		Description: "Big sale",
		CTAText:     "Shop",
		CTALink:     "https://shop.test",
		Type:        "standard",
		Audience: dto.AudienceDTO{
			SelectionMethod: "feed",
			UserTypes:       []string{"owner"},
		},
	}
}

func TestCreateNotification(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("identity is stamped on commit", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

		in := submittedDraft("Sale")
		in.ID = utils.ToPtr("client-chosen")
		resp, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: in}, nil)
		require.NoError(t, err)

		item := resp.Notification
		require.NotNil(t, item.ID)
		assert.NotEqual(t, "client-chosen", *item.ID)
		_, err = uuid.Parse(*item.ID)
		assert.NoError(t, err)
		assert.Equal(t, now, *item.CreatedAt)
		assert.Equal(t, now.Add(30*24*time.Hour), *item.ExpiresAt)
		assert.True(t, *item.IsActive)
		assert.Equal(t, "Active", item.Status)
		assert.Equal(t, "Standard", item.TypeLabel)
	})

	t.Run("manual ids are normalized before storing", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

		in := submittedDraft("Sale")
		in.Audience = dto.AudienceDTO{SelectionMethod: "manual", UserIDs: []string{" 7 ", "  ", "8"}}
		resp, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: in}, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"7", "8"}, resp.Notification.Audience.UserIDs)
		require.Len(t, repo.rows, 1)
		assert.Equal(t, []string{"7", "8"}, repo.rows[0].Spec.Audience.UserIDs)
	})

	t.Run("missing description", func(t *testing.T) {
		repo := &fakeNotificationRepo{}
		flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

		in := submittedDraft("Sale")
		in.Description = ""
		_, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: in}, nil)
		require.Error(t, err)
		assert.True(t, IsDraftNotSubmittable(err))
		assert.Empty(t, repo.rows)
	})

	t.Run("invalid audience", func(t *testing.T) {
		flow := newNotificationFlowForTest(&fakeNotificationRepo{}, &fakeEstimator{}, now)

		in := submittedDraft("Sale")
		in.Audience.SelectionMethod = "random"
		_, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: in}, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidSelectionMethod(err))
	})
}

func TestGetNotification(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{byUUID: map[string]error{}}
	flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

	created, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: submittedDraft("Sale")}, nil)
	require.NoError(t, err)

	got, err := flow.GetNotification(ctx, &dto.GetNotificationRequest{UUID: *created.Notification.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sale", got.Notification.Title)

	tests := []struct {
		name  string
		uuid  string
		setup func()
		check func(error) bool
	}{
		{name: "empty", uuid: " ", check: IsNotificationUUIDRequired},
		{name: "not a uuid", uuid: "abc", check: IsNotificationNotFound},
		{name: "unknown", uuid: uuid.NewString(), check: IsNotificationNotFound},
		{
			name: "malformed row",
			uuid: "0b6f9a52-7a3c-4c1e-9d0e-1f2a3b4c5d6e",
			setup: func() {
				repo.byUUID["0b6f9a52-7a3c-4c1e-9d0e-1f2a3b4c5d6e"] = fmt.Errorf("%w: missing title", repository.ErrMalformedNotification)
			},
			check: IsMalformedNotification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			_, err := flow.GetNotification(ctx, &dto.GetNotificationRequest{UUID: tt.uuid}, nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}
}

func TestListNotifications(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{}
	flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

	for i := range 12 {
		_, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: submittedDraft(fmt.Sprintf("N%02d", i))}, nil)
		require.NoError(t, err)
	}
	repo.rows[0].IsActive = utils.ToPtr(false)

	t.Run("newest first with default page size", func(t *testing.T) {
		resp, err := flow.ListNotifications(ctx, &dto.ListNotificationsRequest{}, nil)
		require.NoError(t, err)
		require.Len(t, resp.Items, 10)
		assert.Equal(t, "N11", resp.Items[0].Title)
		assert.Equal(t, int64(12), resp.Pagination.Total)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
	})

	t.Run("second page oldest first", func(t *testing.T) {
		resp, err := flow.ListNotifications(ctx, &dto.ListNotificationsRequest{Page: 2, Limit: 5, OrderBy: "oldest"}, nil)
		require.NoError(t, err)
		require.Len(t, resp.Items, 5)
		assert.Equal(t, "N05", resp.Items[0].Title)
	})

	t.Run("status filter", func(t *testing.T) {
		resp, err := flow.ListNotifications(ctx, &dto.ListNotificationsRequest{Filter: &dto.ListNotificationsFilter{Status: utils.ToPtr("inactive")}}, nil)
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Inactive", resp.Items[0].Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := flow.ListNotifications(ctx, &dto.ListNotificationsRequest{Filter: &dto.ListNotificationsFilter{Status: utils.ToPtr("paused")}}, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidStatus(err))
	})
}

func TestListNotificationsCreatedRange(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{}
	flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

	for i := range 5 {
		_, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: submittedDraft(fmt.Sprintf("Day%d", i))}, nil)
		require.NoError(t, err)
		repo.rows[i].CreatedAt = now.AddDate(0, 0, i-4)
	}

	after := now.AddDate(0, 0, -3)
	before := now.AddDate(0, 0, -1)
	resp, err := flow.ListNotifications(ctx, &dto.ListNotificationsRequest{
		OrderBy: "oldest",
		Filter:  &dto.ListNotificationsFilter{CreatedAfter: &after, CreatedBefore: &before},
	}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Day1", resp.Items[0].Title)
	assert.Equal(t, "Day2", resp.Items[1].Title)

	_, err = flow.ListNotifications(ctx, &dto.ListNotificationsRequest{
		Filter: &dto.ListNotificationsFilter{CreatedAfter: &before, CreatedBefore: &after},
	}, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidDateRange(err))
	assert.True(t, IsValidationError(err))
}

func TestExportNotifications(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{}
	flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

	_, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: submittedDraft("Sale")}, nil)
	require.NoError(t, err)

	resp, err := flow.ExportNotifications(ctx, &dto.ListNotificationsRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "notifications_20250301_100000.xlsx", resp.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(resp.Content))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Notifications")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Title", "Type", "Audience", "Created", "Expires", "Status"}, rows[0])
	assert.Equal(t, "Sale", rows[1][0])
	assert.Equal(t, "Active", rows[1][5])
}

func TestEstimateAudience(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		audience  dto.AudienceDTO
		estimator *fakeEstimator
		wantCount int
		wantCode  string
	}{
		{
			name:      "manual counts ids",
			audience:  dto.AudienceDTO{SelectionMethod: "manual", UserIDs: []string{"1", "2"}},
			estimator: &fakeEstimator{count: 999},
			wantCount: 2,
		},
		{
			name:      "manual ids are trimmed and blanks dropped",
			audience:  dto.AudienceDTO{SelectionMethod: "manual", UserIDs: []string{" a ", "", "  ", "b"}},
			estimator: &fakeEstimator{count: 999},
			wantCount: 2,
		},
		{
			name:      "blank query",
			audience:  dto.AudienceDTO{SelectionMethod: "query", UserQuery: utils.ToPtr("  \n ")},
			estimator: &fakeEstimator{count: 17},
			wantCode:  "USER_QUERY_REQUIRED",
		},
		{
			name:      "query uses the provider",
			audience:  dto.AudienceDTO{SelectionMethod: "query", UserQuery: utils.ToPtr("SELECT id FROM users")},
			estimator: &fakeEstimator{count: 17},
			wantCount: 17,
		},
		{
			name:      "empty query",
			audience:  dto.AudienceDTO{SelectionMethod: "query", UserQuery: utils.ToPtr("")},
			estimator: &fakeEstimator{count: 17},
			wantCode:  "USER_QUERY_REQUIRED",
		},
		{
			name:      "feed unsupported by provider",
			audience:  dto.AudienceDTO{SelectionMethod: "feed"},
			estimator: &fakeEstimator{err: services.ErrEstimationNotSupported},
			wantCode:  "ESTIMATION_NOT_SUPPORTED",
		},
		{
			name:      "bad query",
			audience:  dto.AudienceDTO{SelectionMethod: "query", UserQuery: utils.ToPtr("DROP TABLE users")},
			estimator: &fakeEstimator{err: services.ErrInvalidUserQuery},
			wantCode:  "INVALID_USER_QUERY",
		},
		{
			name:      "provider failure",
			audience:  dto.AudienceDTO{SelectionMethod: "query", UserQuery: utils.ToPtr("SELECT 1")},
			estimator: &fakeEstimator{err: errors.New("timeout")},
			wantCode:  "ESTIMATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := newNotificationFlowForTest(&fakeNotificationRepo{}, tt.estimator, now)
			resp, err := flow.EstimateAudience(ctx, &dto.EstimateAudienceRequest{AudienceDTO: tt.audience}, nil)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, businessCode(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, resp.Count)
		})
	}
}

func TestListAudienceOptions(t *testing.T) {
	flow := newNotificationFlowForTest(&fakeNotificationRepo{}, &fakeEstimator{}, utils.UTCNow())

	resp, err := flow.ListAudienceOptions(context.Background())
	require.NoError(t, err)

	assert.Len(t, resp.NotificationTypes, 2)
	assert.Len(t, resp.SelectionMethods, 3)
	assert.Len(t, resp.UserTypes, len(models.UserTypes()))
	assert.Len(t, resp.Zones, len(models.Zones()))
	assert.Equal(t, dto.RangeDTO{Min: 1, Max: 365, Default: 30}, resp.Ranges["leads_age_in_days"])
}

func TestExpireNotifications(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{}
	flow := newNotificationFlowForTest(repo, &fakeEstimator{}, now)

	_, err := flow.CreateNotification(ctx, &dto.CreateNotificationRequest{NotificationDraftDTO: submittedDraft("Old")}, nil)
	require.NoError(t, err)

	n, err := flow.ExpireNotifications(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	flow.now = func() time.Time { return now.Add(31 * 24 * time.Hour) }
	n, err = flow.ExpireNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, *repo.rows[0].IsActive)
}
