// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	businessflow "github.com/amirphl/notification-hub/business_flow"
	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const defaultRequestTimeout = 30 * time.Second

// baseHandler carries the response envelope helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: newValidator()}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validate runs struct validation and writes a 400 response when it fails.
// It returns true when the request may proceed.
func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	err := h.validator.Struct(req)
	if err == nil {
		return true, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}

	var messages []string
	for _, fe := range validationErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", messages)
}

// metadata builds client metadata, including the draft session resolved by the session middleware
func (h *baseHandler) metadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	if sessionID, ok := c.Locals("session_id").(string); ok {
		metadata.SetSessionID(sessionID)
	}
	return metadata
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return h.createRequestContextWithTimeout(c, endpoint, defaultRequestTimeout)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *baseHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	if sessionID, ok := c.Locals("session_id").(string); ok {
		ctx = context.WithValue(ctx, utils.SessionIDKey, sessionID)
	}

	return ctx, cancel
}

// handleFlowError maps business errors to HTTP statuses. Unknown errors are logged and
// reported with the fallback message and code.
func (h *baseHandler) handleFlowError(c fiber.Ctx, err error, fallbackMessage, fallbackCode string) error {
	switch {
	case businessflow.IsDraftSessionRequired(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Draft session is required", "DRAFT_SESSION_REQUIRED", nil)
	case businessflow.IsDraftSessionNotFound(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Draft session not found or expired", "DRAFT_SESSION_NOT_FOUND", nil)
	case businessflow.IsDraftConflict(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Draft was modified concurrently, please retry", "DRAFT_CONFLICT", nil)
	case businessflow.IsUserQueryRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Please enter a valid SQL query first", "USER_QUERY_REQUIRED", nil)
	case businessflow.IsInvalidUserQuery(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "The user query could not be executed", "INVALID_USER_QUERY", err.Error())
	case businessflow.IsEstimationNotSupported(err):
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Audience estimation is not supported for this selection method", "ESTIMATION_NOT_SUPPORTED", nil)
	case businessflow.IsDraftNotSubmittable(err):
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Title and description are required", "DRAFT_NOT_SUBMITTABLE", nil)
	case businessflow.IsUnknownZone(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown zone", "UNKNOWN_ZONE", nil)
	case businessflow.IsNotificationUUIDRequired(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Notification UUID is required", "MISSING_NOTIFICATION_UUID", nil)
	case businessflow.IsNotificationNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", "NOTIFICATION_NOT_FOUND", nil)
	case businessflow.IsMalformedNotification(err):
		log.Println("Malformed notification", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Notification is malformed", "MALFORMED_NOTIFICATION", nil)
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetail(err))
	}

	log.Println(fallbackMessage, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

// validationDetail returns the innermost message of a business error chain
func validationDetail(err error) string {
	var be *businessflow.BusinessError
	if errors.As(err, &be) && be.Err != nil {
		return be.Err.Error()
	}
	return err.Error()
}

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		return models.IsKnownZone(fl.Field().String())
	})
	_ = v.RegisterValidation("user_type", func(fl validator.FieldLevel) bool {
		return models.UserType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("user_classification", func(fl validator.FieldLevel) bool {
		return models.UserClassification(fl.Field().String()).Valid()
	})

	return v
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "zone":
		return fmt.Sprintf("%s must be a known zone, got %q", err.Field(), err.Value())
	case "user_type":
		return fmt.Sprintf("%s must be a known user type, got %q", err.Field(), err.Value())
	case "user_classification":
		return fmt.Sprintf("%s must be a known user classification, got %q", err.Field(), err.Value())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
