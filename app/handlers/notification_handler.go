// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"strconv"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	businessflow "github.com/amirphl/notification-hub/business_flow"
	"github.com/gofiber/fiber/v3"
)

// NotificationHandlerInterface defines the contract for notification handlers
type NotificationHandlerInterface interface {
	CreateNotification(c fiber.Ctx) error
	GetNotification(c fiber.Ctx) error
	ListNotifications(c fiber.Ctx) error
	ExportNotifications(c fiber.Ctx) error
	EstimateAudience(c fiber.Ctx) error
	ListAudienceOptions(c fiber.Ctx) error
}

// NotificationHandler handles notification history HTTP requests
type NotificationHandler struct {
	baseHandler
	notificationFlow businessflow.NotificationFlow
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationFlow businessflow.NotificationFlow) *NotificationHandler {
	return &NotificationHandler{
		baseHandler:      newBaseHandler(),
		notificationFlow: notificationFlow,
	}
}

// CreateNotification commits submitted draft content
// @Summary Create Notification
// @Description Commit a draft to the notification history. Title and description are required.
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body dto.CreateNotificationRequest true "Draft content"
// @Success 201 {object} dto.APIResponse{data=dto.CreateNotificationResponse} "Notification created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 422 {object} dto.APIResponse "Title and description are required"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/notifications [post]
func (h *NotificationHandler) CreateNotification(c fiber.Ctx) error {
	var req dto.CreateNotificationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications")
	defer cancel()

	result, err := h.notificationFlow.CreateNotification(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Notification creation failed", "NOTIFICATION_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// GetNotification returns one committed notification
// @Summary Get Notification
// @Tags Notifications
// @Produce json
// @Param uuid path string true "Notification UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetNotificationResponse}
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/notifications/{uuid} [get]
func (h *NotificationHandler) GetNotification(c fiber.Ctx) error {
	notificationUUID := c.Params("uuid")
	if notificationUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Notification UUID is required", "MISSING_NOTIFICATION_UUID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications/"+notificationUUID)
	defer cancel()

	result, err := h.notificationFlow.GetNotification(ctx, &dto.GetNotificationRequest{UUID: notificationUUID}, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to get notification", "GET_NOTIFICATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListNotifications returns a page of the history
// @Summary List Notifications
// @Description Retrieve committed notifications with pagination, ordering, and filters
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param orderby query string false "Order by (newest|oldest)" default(newest)
// @Param title query string false "Filter by title (contains)"
// @Param type query string false "Filter by type (standard|golden)"
// @Param selection_method query string false "Filter by selection method (feed|manual|query)"
// @Param status query string false "Filter by status (active|inactive)"
// @Param created_after query string false "Created at or after (RFC 3339)"
// @Param created_before query string false "Created before (RFC 3339)"
// @Success 200 {object} dto.APIResponse{data=dto.ListNotificationsResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) ListNotifications(c fiber.Ctx) error {
	req, ok, err := h.parseListRequest(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications")
	defer cancel()

	result, err := h.notificationFlow.ListNotifications(ctx, req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to list notifications", "LIST_NOTIFICATIONS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, fiber.Map{
		"items":      result.Items,
		"pagination": result.Pagination,
	})
}

// ExportNotifications downloads the filtered history as an xlsx workbook
// @Summary Export Notifications
// @Tags Notifications
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param orderby query string false "Order by (newest|oldest)" default(newest)
// @Param title query string false "Filter by title (contains)"
// @Param type query string false "Filter by type (standard|golden)"
// @Param selection_method query string false "Filter by selection method (feed|manual|query)"
// @Param status query string false "Filter by status (active|inactive)"
// @Param created_after query string false "Created at or after (RFC 3339)"
// @Param created_before query string false "Created before (RFC 3339)"
// @Success 200 {file} file
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/notifications/export [get]
func (h *NotificationHandler) ExportNotifications(c fiber.Ctx) error {
	req, ok, err := h.parseListRequest(c)
	if !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications/export")
	defer cancel()

	result, err := h.notificationFlow.ExportNotifications(ctx, req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to export notifications", "EXPORT_NOTIFICATIONS_FAILED")
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+result.Filename)
	return c.Send(result.Content)
}

// EstimateAudience sizes an audience without a draft session
// @Summary Estimate Audience
// @Description Estimate how many users an audience selection reaches
// @Tags Audience
// @Accept json
// @Produce json
// @Param request body dto.EstimateAudienceRequest true "Audience selection"
// @Success 200 {object} dto.APIResponse{data=dto.EstimateAudienceResponse}
// @Failure 400 {object} dto.APIResponse "Validation error or empty query"
// @Failure 422 {object} dto.APIResponse "Estimation not supported"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/notifications/audience/estimate [post]
func (h *NotificationHandler) EstimateAudience(c fiber.Ctx) error {
	var req dto.EstimateAudienceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications/audience/estimate")
	defer cancel()

	result, err := h.notificationFlow.EstimateAudience(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to estimate audience", "ESTIMATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListAudienceOptions returns the targeting catalog
// @Summary List Audience Options
// @Tags Audience
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AudienceOptionsResponse}
// @Router /api/v1/notifications/audience/options [get]
func (h *NotificationHandler) ListAudienceOptions(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications/audience/options")
	defer cancel()

	result, err := h.notificationFlow.ListAudienceOptions(ctx)
	if err != nil {
		return h.handleFlowError(c, err, "Failed to list audience options", "LIST_AUDIENCE_OPTIONS_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// parseListRequest reads listing query parameters. It writes the error response itself when ok is false.
func (h *NotificationHandler) parseListRequest(c fiber.Ctx) (*dto.ListNotificationsRequest, bool, error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", businessflow.ErrInvalidPage.Error())
		}
		page = v
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", businessflow.ErrInvalidPageSize.Error())
		}
		limit = v
	}

	createdAfter, err := parseTimestampQuery(c.Query("created_after"))
	if err != nil {
		return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", businessflow.ErrInvalidTimestamp.Error())
	}
	createdBefore, err := parseTimestampQuery(c.Query("created_before"))
	if err != nil {
		return nil, false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", businessflow.ErrInvalidTimestamp.Error())
	}

	var filter *dto.ListNotificationsFilter
	title, typ, method, status := c.Query("title"), c.Query("type"), c.Query("selection_method"), c.Query("status")
	if title != "" || typ != "" || method != "" || status != "" || createdAfter != nil || createdBefore != nil {
		filter = &dto.ListNotificationsFilter{CreatedAfter: createdAfter, CreatedBefore: createdBefore}
		if title != "" {
			filter.Title = &title
		}
		if typ != "" {
			filter.Type = &typ
		}
		if method != "" {
			filter.SelectionMethod = &method
		}
		if status != "" {
			filter.Status = &status
		}
	}

	req := &dto.ListNotificationsRequest{
		Page:    page,
		Limit:   limit,
		OrderBy: c.Query("orderby", "newest"),
		Filter:  filter,
	}
	if ok, err := h.validate(c, req); !ok {
		return nil, false, err
	}
	return req, true, nil
}

func parseTimestampQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
