package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/repository"
	"github.com/amirphl/notification-hub/utils"
)

// Estimator error constants
var (
	ErrEstimationNotSupported = errors.New("audience estimation not supported for this selection method")
	ErrInvalidUserQuery       = errors.New("invalid user query")
	ErrEmptyUserQuery         = errors.New("user query is empty")
)

// AudienceEstimator sizes an audience. Implementations may block and must honour ctx.
type AudienceEstimator interface {
	EstimateCount(ctx context.Context, audience models.AudienceSpec, filters *models.FilterSpec) (int, error)
}

// MockAudienceEstimator waits a fixed delay and returns a random count in [1, max]
type MockAudienceEstimator struct {
	delay  time.Duration
	max    int
	random func(n int) int
}

// NewMockAudienceEstimator creates the mock estimator
func NewMockAudienceEstimator(delay time.Duration, maxCount int) *MockAudienceEstimator {
	if maxCount < 1 {
		maxCount = 1
	}
	return &MockAudienceEstimator{
		delay:  delay,
		max:    maxCount,
		random: rand.IntN,
	}
}

// EstimateCount implements AudienceEstimator
func (e *MockAudienceEstimator) EstimateCount(ctx context.Context, audience models.AudienceSpec, filters *models.FilterSpec) (int, error) {
	switch audience.SelectionMethod {
	case models.SelectionMethodManual:
		return len(audience.UserIDs), nil
	case models.SelectionMethodQuery:
		if !audience.HasUserQuery() {
			return 0, ErrEmptyUserQuery
		}
	default:
		return 0, ErrEstimationNotSupported
	}

	if e.delay > 0 {
		timer := time.NewTimer(e.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}
	}

	return e.random(e.max) + 1, nil
}

// DatabaseAudienceEstimator sizes audiences against the audience_members table
type DatabaseAudienceEstimator struct {
	members      repository.AudienceMemberRepository
	queryTimeout time.Duration
	now          func() time.Time
}

// NewDatabaseAudienceEstimator creates the database backed estimator
func NewDatabaseAudienceEstimator(members repository.AudienceMemberRepository, queryTimeout time.Duration) *DatabaseAudienceEstimator {
	return &DatabaseAudienceEstimator{
		members:      members,
		queryTimeout: queryTimeout,
		now:          utils.UTCNow,
	}
}

// EstimateCount implements AudienceEstimator. Filters narrow feed audiences only.
func (e *DatabaseAudienceEstimator) EstimateCount(ctx context.Context, audience models.AudienceSpec, filters *models.FilterSpec) (int, error) {
	switch audience.SelectionMethod {
	case models.SelectionMethodManual:
		return len(audience.UserIDs), nil

	case models.SelectionMethodQuery:
		if !audience.HasUserQuery() {
			return 0, ErrEmptyUserQuery
		}
		count, err := e.members.CountByQuery(ctx, strings.TrimSpace(*audience.UserQuery), e.queryTimeout)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidQuery) {
				return 0, fmt.Errorf("%w: %v", ErrInvalidUserQuery, err)
			}
			return 0, err
		}
		return int(count), nil

	case models.SelectionMethodFeed:
		count, err := e.members.CountByFilter(ctx, models.NewAudienceMemberFilter(audience, filters, e.now()))
		if err != nil {
			return 0, err
		}
		return int(count), nil
	}

	return 0, ErrEstimationNotSupported
}
