package businessflow

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/notification-hub/app/services"
	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/repository"
	"github.com/amirphl/notification-hub/utils"
)

// fakeNotificationRepo keeps notifications in memory. Unused methods panic through the nil interface.
type fakeNotificationRepo struct {
	repository.NotificationRepository

	mu      sync.Mutex
	rows    []*models.Notification
	saveErr error
	byUUID  map[string]error
	onSave  func()
}

func (r *fakeNotificationRepo) Save(ctx context.Context, n *models.Notification) error {
	if r.onSave != nil {
		r.onSave()
	}
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeNotificationRepo) ByUUID(ctx context.Context, uuid string) (*models.Notification, error) {
	if err := r.byUUID[uuid]; err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.UUID.String() == uuid {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) matching(filter models.NotificationFilter) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.rows {
		if filter.Title != nil && !strings.Contains(strings.ToLower(n.Spec.Title), strings.ToLower(*filter.Title)) {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		if filter.ActiveAt != nil && n.Status(*filter.ActiveAt) != models.NotificationStatusActive {
			continue
		}
		if filter.InactiveAt != nil && n.Status(*filter.InactiveAt) != models.NotificationStatusInactive {
			continue
		}
		if filter.CreatedAfter != nil && n.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && !n.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (r *fakeNotificationRepo) ByFilter(ctx context.Context, filter models.NotificationFilter, orderBy string, limit, offset int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := r.matching(filter)
	if strings.HasPrefix(orderBy, "created_at DESC") {
		slices.Reverse(rows)
	}
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeNotificationRepo) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *fakeNotificationRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if utils.IsTrue(row.IsActive) && !row.ExpiresAt.After(now) {
			row.IsActive = utils.ToPtr(false)
			n++
		}
	}
	return n, nil
}

// fakeEstimator returns count, or blocks on release when set
type fakeEstimator struct {
	count   int
	err     error
	started chan struct{}
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (e *fakeEstimator) EstimateCount(ctx context.Context, audience models.AudienceSpec, filters *models.FilterSpec) (int, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.started != nil {
		e.started <- struct{}{}
	}
	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return e.count, e.err
}

func (e *fakeEstimator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakeTokens struct {
	ttl time.Duration
}

func (f fakeTokens) GenerateSessionToken(sessionID string) (string, time.Time, error) {
	if sessionID == "" {
		return "", time.Time{}, errors.New("empty session id")
	}
	return "token-" + sessionID, utils.UTCNow().Add(f.ttl), nil
}

func (f fakeTokens) ValidateSessionToken(token string) (*services.SessionTokenClaims, error) {
	id, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, services.ErrTokenInvalid
	}
	return &services.SessionTokenClaims{SessionID: id}, nil
}

func (f fakeTokens) TTL() time.Duration { return f.ttl }
