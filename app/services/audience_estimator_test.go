package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/repository"
	"github.com/amirphl/notification-hub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryAudience(q string) models.AudienceSpec {
	return models.AudienceSpec{SelectionMethod: models.SelectionMethodQuery, UserQuery: &q}
}

func TestMockAudienceEstimator(t *testing.T) {
	ctx := context.Background()

	t.Run("count stays in range", func(t *testing.T) {
		e := NewMockAudienceEstimator(0, 1000)
		for range 200 {
			n, err := e.EstimateCount(ctx, queryAudience("SELECT 1"), nil)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, 1000)
		}
	})

	t.Run("bounds of the random source", func(t *testing.T) {
		e := NewMockAudienceEstimator(0, 1000)
		e.random = func(n int) int { return 0 }
		n, err := e.EstimateCount(ctx, queryAudience("SELECT 1"), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		e.random = func(n int) int { return n - 1 }
		n, err = e.EstimateCount(ctx, queryAudience("SELECT 1"), nil)
		require.NoError(t, err)
		assert.Equal(t, 1000, n)
	})

	t.Run("manual counts ids", func(t *testing.T) {
		e := NewMockAudienceEstimator(time.Hour, 1000)
		n, err := e.EstimateCount(ctx, models.AudienceSpec{
			SelectionMethod: models.SelectionMethodManual,
			UserIDs:         []string{"a", "a", "b"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("empty query fails fast", func(t *testing.T) {
		e := NewMockAudienceEstimator(time.Hour, 1000)
		start := time.Now()
		_, err := e.EstimateCount(ctx, queryAudience("   "), nil)
		assert.ErrorIs(t, err, ErrEmptyUserQuery)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("feed unsupported", func(t *testing.T) {
		e := NewMockAudienceEstimator(0, 1000)
		_, err := e.EstimateCount(ctx, models.NewDraft("").Audience, nil)
		assert.ErrorIs(t, err, ErrEstimationNotSupported)
	})

	t.Run("waits for the delay", func(t *testing.T) {
		e := NewMockAudienceEstimator(50*time.Millisecond, 10)
		start := time.Now()
		_, err := e.EstimateCount(ctx, queryAudience("SELECT 1"), nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("honours cancellation", func(t *testing.T) {
		e := NewMockAudienceEstimator(time.Hour, 10)
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := e.EstimateCount(cctx, queryAudience("SELECT 1"), nil)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

type fakeMemberRepo struct {
	repository.AudienceMemberRepository
	filter     models.AudienceMemberFilter
	query      string
	timeout    time.Duration
	count      int64
	err        error
	queryCalls int
}

func (f *fakeMemberRepo) CountByFilter(ctx context.Context, filter models.AudienceMemberFilter) (int64, error) {
	f.filter = filter
	return f.count, f.err
}

func (f *fakeMemberRepo) CountByQuery(ctx context.Context, query string, timeout time.Duration) (int64, error) {
	f.queryCalls++
	f.query = query
	f.timeout = timeout
	return f.count, f.err
}

func TestDatabaseAudienceEstimator(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("feed builds member filter", func(t *testing.T) {
		repo := &fakeMemberRepo{count: 42}
		e := NewDatabaseAudienceEstimator(repo, time.Second)
		e.now = func() time.Time { return now }

		audience := models.AudienceSpec{
			SelectionMethod: models.SelectionMethodFeed,
			UserTypes:       []models.UserType{models.UserTypeOwner},
		}
		filters := &models.FilterSpec{
			Zones: []string{"east"},
			Leads: &models.LeadsFilter{Quantity: 2, AgeInDays: 10},
		}

		n, err := e.EstimateCount(ctx, audience, filters)
		require.NoError(t, err)
		assert.Equal(t, 42, n)
		assert.Equal(t, []models.UserType{models.UserTypeOwner}, repo.filter.UserTypes)
		assert.Empty(t, repo.filter.Classifications)
		assert.Equal(t, []string{"east"}, repo.filter.Zones)
		require.NotNil(t, repo.filter.LeadsSince)
		assert.Equal(t, now.AddDate(0, 0, -10), *repo.filter.LeadsSince)
		assert.True(t, repo.filter.OnlyActive)
	})

	t.Run("query is trimmed and bounded", func(t *testing.T) {
		repo := &fakeMemberRepo{count: 7}
		e := NewDatabaseAudienceEstimator(repo, 3*time.Second)

		n, err := e.EstimateCount(ctx, queryAudience("  SELECT id FROM audience_members  "), nil)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		assert.Equal(t, "SELECT id FROM audience_members", repo.query)
		assert.Equal(t, 3*time.Second, repo.timeout)
	})

	t.Run("invalid query maps to user error", func(t *testing.T) {
		repo := &fakeMemberRepo{err: repository.ErrInvalidQuery}
		e := NewDatabaseAudienceEstimator(repo, time.Second)

		_, err := e.EstimateCount(ctx, queryAudience("SELEC"), nil)
		assert.ErrorIs(t, err, ErrInvalidUserQuery)
	})

	t.Run("infrastructure errors pass through", func(t *testing.T) {
		boom := errors.New("connection refused")
		repo := &fakeMemberRepo{err: boom}
		e := NewDatabaseAudienceEstimator(repo, time.Second)

		_, err := e.EstimateCount(ctx, queryAudience("SELECT 1"), nil)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrInvalidUserQuery)
	})

	t.Run("empty query never reaches the database", func(t *testing.T) {
		repo := &fakeMemberRepo{}
		e := NewDatabaseAudienceEstimator(repo, time.Second)

		_, err := e.EstimateCount(ctx, models.AudienceSpec{SelectionMethod: models.SelectionMethodQuery, UserQuery: utils.ToPtr("")}, nil)
		assert.ErrorIs(t, err, ErrEmptyUserQuery)
		assert.Zero(t, repo.queryCalls)
	})
}
