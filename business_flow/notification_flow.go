// Package businessflow contains the core business logic and use cases for notification workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/app/services"
	"github.com/amirphl/notification-hub/config"
	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/repository"
	"github.com/amirphl/notification-hub/utils"
	"github.com/xuri/excelize/v2"
)

// NotificationFlow handles the notification history and stateless audience sizing
type NotificationFlow interface {
	CreateNotification(ctx context.Context, req *dto.CreateNotificationRequest, metadata *ClientMetadata) (*dto.CreateNotificationResponse, error)
	GetNotification(ctx context.Context, req *dto.GetNotificationRequest, metadata *ClientMetadata) (*dto.GetNotificationResponse, error)
	ListNotifications(ctx context.Context, req *dto.ListNotificationsRequest, metadata *ClientMetadata) (*dto.ListNotificationsResponse, error)
	ExportNotifications(ctx context.Context, req *dto.ListNotificationsRequest, metadata *ClientMetadata) (*dto.ExportNotificationsResponse, error)
	EstimateAudience(ctx context.Context, req *dto.EstimateAudienceRequest, metadata *ClientMetadata) (*dto.EstimateAudienceResponse, error)
	ListAudienceOptions(ctx context.Context) (*dto.AudienceOptionsResponse, error)
	ExpireNotifications(ctx context.Context) (int64, error)
}

// NotificationFlowImpl implements the notification business flow
type NotificationFlowImpl struct {
	notificationRepo repository.NotificationRepository
	estimator        services.AudienceEstimator
	notificationCfg  config.NotificationConfig
	now              func() time.Time
}

// NewNotificationFlow creates a new notification flow instance
func NewNotificationFlow(
	notificationRepo repository.NotificationRepository,
	estimator services.AudienceEstimator,
	notificationCfg config.NotificationConfig,
) NotificationFlow {
	return &NotificationFlowImpl{
		notificationRepo: notificationRepo,
		estimator:        estimator,
		notificationCfg:  notificationCfg,
		now:              utils.UTCNow,
	}
}

// CreateNotification commits submitted draft content to the history
func (s *NotificationFlowImpl) CreateNotification(ctx context.Context, req *dto.CreateNotificationRequest, metadata *ClientMetadata) (*dto.CreateNotificationResponse, error) {
	draft, err := FromNotificationDraftDTO(req.NotificationDraftDTO)
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_VALIDATION_FAILED", "Notification validation failed", err)
	}

	notification, err := commitNotification(ctx, s.notificationRepo, draft, s.notificationCfg.TTL, s.now())
	if err != nil {
		if IsDraftNotSubmittable(err) {
			return nil, NewBusinessError("DRAFT_NOT_SUBMITTABLE", "Title and description are required", err)
		}
		return nil, NewBusinessError("NOTIFICATION_CREATION_FAILED", "Notification creation failed", err)
	}

	return &dto.CreateNotificationResponse{
		Message:      "Notification created successfully!",
		Notification: ToNotificationItem(notification, s.now()),
	}, nil
}

// GetNotification returns one committed notification
func (s *NotificationFlowImpl) GetNotification(ctx context.Context, req *dto.GetNotificationRequest, metadata *ClientMetadata) (*dto.GetNotificationResponse, error) {
	notification, err := getNotification(ctx, s.notificationRepo, req.UUID)
	if err != nil {
		return nil, err
	}

	return &dto.GetNotificationResponse{
		Message:      "Notification retrieved successfully",
		Notification: ToNotificationItem(notification, s.now()),
	}, nil
}

// ListNotifications returns a page of the history
func (s *NotificationFlowImpl) ListNotifications(ctx context.Context, req *dto.ListNotificationsRequest, metadata *ClientMetadata) (resp *dto.ListNotificationsResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("LIST_NOTIFICATIONS_FAILED", "Failed to list notifications", err)
		}
	}()

	// Normalize pagination
	page := max(1, req.Page)
	limit := req.Limit
	if limit <= 0 {
		limit = s.notificationCfg.PageSize
	}
	if limit <= 0 {
		limit = utils.DefaultPageSize
	}
	if limit > utils.MaxPageSize {
		limit = utils.MaxPageSize
	}
	offset := (page - 1) * limit

	now := s.now()
	filter, err := s.buildFilter(req.Filter, now)
	if err != nil {
		return nil, err
	}
	orderBy := notificationOrderBy(req.OrderBy)

	// Count total
	total64, err := s.notificationRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	// Fetch rows
	rows, err := s.notificationRepo.ByFilter(ctx, filter, orderBy, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NotificationItem, 0, len(rows))
	for _, n := range rows {
		items = append(items, ToNotificationItem(n, now))
	}

	// Build pagination
	totalPages := int((total64 + int64(limit) - 1) / int64(limit))

	return &dto.ListNotificationsResponse{
		Message: "Notifications retrieved successfully",
		Items:   items,
		Pagination: dto.PaginationInfo{
			Total:      total64,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}, nil
}

// ExportNotifications renders the filtered history as an xlsx workbook
func (s *NotificationFlowImpl) ExportNotifications(ctx context.Context, req *dto.ListNotificationsRequest, metadata *ClientMetadata) (*dto.ExportNotificationsResponse, error) {
	now := s.now()
	filter, err := s.buildFilter(req.Filter, now)
	if err != nil {
		return nil, NewBusinessError("EXPORT_NOTIFICATIONS_FAILED", "Failed to export notifications", err)
	}

	rows, err := s.notificationRepo.ByFilter(ctx, filter, notificationOrderBy(req.OrderBy), s.notificationCfg.ExportLimit, 0)
	if err != nil {
		return nil, NewBusinessError("FETCH_NOTIFICATIONS_FAILED", "Failed to fetch notifications", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Notifications"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	header := []string{"Title", "Type", "Audience", "Created", "Expires", "Status"}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	for i, n := range rows {
		record := []string{
			n.Spec.Title,
			n.Spec.Type.Label(),
			n.Spec.Audience.SelectionMethod.Label(),
			n.CreatedAt.UTC().Format(time.RFC3339),
			n.ExpiresAt.UTC().Format(time.RFC3339),
			string(n.Status(now)),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	return &dto.ExportNotificationsResponse{
		Filename: fmt.Sprintf("notifications_%s.xlsx", now.Format("20060102_150405")),
		Content:  buf.Bytes(),
	}, nil
}

// EstimateAudience sizes an audience without touching any draft session
func (s *NotificationFlowImpl) EstimateAudience(ctx context.Context, req *dto.EstimateAudienceRequest, metadata *ClientMetadata) (*dto.EstimateAudienceResponse, error) {
	audience, err := FromAudienceDTO(req.AudienceDTO)
	if err != nil {
		return nil, NewBusinessError("AUDIENCE_VALIDATION_FAILED", "Audience validation failed", err)
	}
	filters, err := FromFiltersDTO(req.Filters)
	if err != nil {
		return nil, NewBusinessError("AUDIENCE_VALIDATION_FAILED", "Audience validation failed", err)
	}

	count, err := estimateAudience(ctx, s.estimator, audience, filters)
	if err != nil {
		return nil, estimateBusinessError(err)
	}

	return &dto.EstimateAudienceResponse{
		Message: fmt.Sprintf("Estimated audience: %d users", count),
		Count:   count,
	}, nil
}

// ListAudienceOptions returns the targeting catalog with display labels
func (s *NotificationFlowImpl) ListAudienceOptions(ctx context.Context) (*dto.AudienceOptionsResponse, error) {
	resp := &dto.AudienceOptionsResponse{
		Message: "Audience options retrieved successfully",
		NotificationTypes: []dto.OptionDTO{
			{Value: models.NotificationTypeStandard.String(), Label: models.NotificationTypeStandard.Label()},
			{Value: models.NotificationTypeGolden.String(), Label: models.NotificationTypeGolden.Label()},
		},
		Ranges: map[string]dto.RangeDTO{
			"inventory_quantity": {Min: models.MinFilterQuantity, Max: models.MaxFilterQuantity, Default: models.DefaultInventoryQuantity},
			"leads_quantity":     {Min: models.MinFilterQuantity, Max: models.MaxFilterQuantity, Default: models.DefaultLeadsQuantity},
			"leads_age_in_days":  {Min: models.MinLeadsAgeInDays, Max: models.MaxLeadsAgeInDays, Default: models.DefaultLeadsAgeInDays},
		},
	}

	for _, m := range []models.SelectionMethod{models.SelectionMethodFeed, models.SelectionMethodManual, models.SelectionMethodQuery} {
		resp.SelectionMethods = append(resp.SelectionMethods, dto.OptionDTO{Value: m.String(), Label: m.Label()})
	}
	for _, t := range models.UserTypes() {
		resp.UserTypes = append(resp.UserTypes, dto.OptionDTO{Value: string(t), Label: t.Label()})
	}
	for _, c := range models.UserClassifications() {
		resp.UserClassifications = append(resp.UserClassifications, dto.OptionDTO{Value: string(c), Label: c.Label()})
	}
	for _, z := range models.Zones() {
		resp.Zones = append(resp.Zones, dto.OptionDTO{Value: z.ID, Label: z.Name})
	}

	return resp, nil
}

// ExpireNotifications deactivates every notification past its expiry
func (s *NotificationFlowImpl) ExpireNotifications(ctx context.Context) (int64, error) {
	n, err := s.notificationRepo.DeactivateExpired(ctx, s.now())
	if err != nil {
		return 0, NewBusinessError("EXPIRE_NOTIFICATIONS_FAILED", "Failed to expire notifications", err)
	}
	if n > 0 {
		notificationsExpiredTotal.Add(float64(n))
	}
	return n, nil
}

// buildFilter maps request filters to repository criteria
func (s *NotificationFlowImpl) buildFilter(in *dto.ListNotificationsFilter, now time.Time) (models.NotificationFilter, error) {
	var filter models.NotificationFilter
	if in == nil {
		return filter, nil
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		title := strings.TrimSpace(*in.Title)
		filter.Title = &title
	}
	if in.Type != nil && *in.Type != "" {
		t := models.NotificationType(*in.Type)
		if !t.Valid() {
			return filter, ErrInvalidNotificationType
		}
		filter.Type = &t
	}
	if in.SelectionMethod != nil && *in.SelectionMethod != "" {
		m := models.SelectionMethod(*in.SelectionMethod)
		if !m.Valid() {
			return filter, ErrInvalidSelectionMethod
		}
		filter.SelectionMethod = &m
	}
	if in.Status != nil && *in.Status != "" {
		switch strings.ToLower(*in.Status) {
		case "active":
			filter.ActiveAt = &now
		case "inactive":
			filter.InactiveAt = &now
		default:
			return filter, ErrInvalidStatus
		}
	}
	if in.CreatedAfter != nil && in.CreatedBefore != nil && !in.CreatedAfter.Before(*in.CreatedBefore) {
		return filter, ErrInvalidDateRange
	}
	if in.CreatedAfter != nil {
		after := in.CreatedAfter.UTC()
		filter.CreatedAfter = &after
	}
	if in.CreatedBefore != nil {
		before := in.CreatedBefore.UTC()
		filter.CreatedBefore = &before
	}
	return filter, nil
}

func notificationOrderBy(orderBy string) string {
	switch orderBy {
	case "oldest":
		return "created_at ASC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// getNotification loads a notification by uuid, mapping repository outcomes to business errors
func getNotification(ctx context.Context, repo repository.NotificationRepository, rawUUID string) (*models.Notification, error) {
	if strings.TrimSpace(rawUUID) == "" {
		return nil, NewBusinessError("NOTIFICATION_UUID_REQUIRED", "Notification UUID is required", ErrNotificationUUIDRequired)
	}
	id, err := utils.ParseUUID(rawUUID)
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_NOT_FOUND", "Notification not found", ErrNotificationNotFound)
	}

	notification, err := repo.ByUUID(ctx, id.String())
	if err != nil {
		if errors.Is(err, repository.ErrMalformedNotification) {
			return nil, NewBusinessError("MALFORMED_NOTIFICATION", "Notification is malformed", fmt.Errorf("%w: %w", ErrMalformedNotification, err))
		}
		return nil, NewBusinessError("NOTIFICATION_LOOKUP_FAILED", "Failed to lookup notification", err)
	}
	if notification == nil {
		return nil, NewBusinessError("NOTIFICATION_NOT_FOUND", "Notification not found", ErrNotificationNotFound)
	}
	return notification, nil
}

// commitNotification stamps identity on the draft content and persists it
func commitNotification(ctx context.Context, repo repository.NotificationRepository, draft models.NotificationDraft, ttl time.Duration, now time.Time) (*models.Notification, error) {
	if !draft.CanSubmit() {
		return nil, ErrDraftNotSubmittable
	}
	if ttl <= 0 {
		ttl = utils.NotificationTTL
	}

	notification := models.NewNotificationFromDraft(draft)
	notification.PrepareForCommit(now, ttl)
	if err := notification.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNotificationType, err)
	}

	if err := repo.Save(ctx, notification); err != nil {
		return nil, err
	}

	notificationsCreatedTotal.WithLabelValues(notification.Type.String(), notification.SelectionMethod.String()).Inc()
	log.Printf("notification %s committed (type=%s, method=%s)", notification.UUID, notification.Type, notification.SelectionMethod)
	return notification, nil
}

// estimateAudience applies the rules shared by every estimator provider
func estimateAudience(ctx context.Context, estimator services.AudienceEstimator, audience models.AudienceSpec, filters *models.FilterSpec) (int, error) {
	method := audience.SelectionMethod
	switch method {
	case models.SelectionMethodManual:
		audienceEstimatesTotal.WithLabelValues(method.String(), estimateOutcomeResolved).Inc()
		return len(audience.UserIDs), nil
	case models.SelectionMethodQuery:
		if !audience.HasUserQuery() {
			audienceEstimatesTotal.WithLabelValues(method.String(), estimateOutcomeRejected).Inc()
			return 0, ErrUserQueryRequired
		}
	}

	start := time.Now()
	count, err := estimator.EstimateCount(ctx, audience.Active(), filters.Clone())
	audienceEstimateDuration.WithLabelValues(method.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		audienceEstimatesTotal.WithLabelValues(method.String(), estimateOutcomeFailed).Inc()
		switch {
		case errors.Is(err, services.ErrEstimationNotSupported):
			return 0, fmt.Errorf("%w: %w", ErrEstimationNotSupported, err)
		case errors.Is(err, services.ErrInvalidUserQuery):
			return 0, fmt.Errorf("%w: %w", ErrInvalidUserQuery, err)
		case errors.Is(err, services.ErrEmptyUserQuery):
			return 0, fmt.Errorf("%w: %w", ErrUserQueryRequired, err)
		}
		return 0, err
	}

	audienceEstimatesTotal.WithLabelValues(method.String(), estimateOutcomeResolved).Inc()
	return count, nil
}

func estimateBusinessError(err error) error {
	switch {
	case IsUserQueryRequired(err):
		return NewBusinessError("USER_QUERY_REQUIRED", "Please enter a valid SQL query first", err)
	case IsInvalidUserQuery(err):
		return NewBusinessError("INVALID_USER_QUERY", "The user query could not be executed", err)
	case IsEstimationNotSupported(err):
		return NewBusinessError("ESTIMATION_NOT_SUPPORTED", "Audience estimation is not supported for this selection method", err)
	}
	return NewBusinessError("ESTIMATION_FAILED", "Failed to estimate audience", err)
}
