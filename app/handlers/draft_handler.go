// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"

	"github.com/amirphl/notification-hub/app/dto"
	businessflow "github.com/amirphl/notification-hub/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DraftHandlerInterface defines the contract for draft session handlers
type DraftHandlerInterface interface {
	OpenSession(c fiber.Ctx) error
	GetDraft(c fiber.Ctx) error
	ResetDraft(c fiber.Ctx) error
	UpdateDraft(c fiber.Ctx) error
	UpdateAudience(c fiber.Ctx) error
	SetUserIDs(c fiber.Ctx) error
	UpdateInventory(c fiber.Ctx) error
	UpdateLeads(c fiber.Ctx) error
	SetUserType(c fiber.Ctx) error
	SetUserClassification(c fiber.Ctx) error
	ToggleZone(c fiber.Ctx) error
	ClearFilters(c fiber.Ctx) error
	PreviewDraft(c fiber.Ctx) error
	EstimateDraftAudience(c fiber.Ctx) error
	GetEstimate(c fiber.Ctx) error
	SubmitDraft(c fiber.Ctx) error
	CloneNotification(c fiber.Ctx) error
}

// DraftHandler handles the working draft of a session
type DraftHandler struct {
	baseHandler
	draftFlow businessflow.DraftFlow
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftFlow businessflow.DraftFlow) *DraftHandler {
	return &DraftHandler{
		baseHandler: newBaseHandler(),
		draftFlow:   draftFlow,
	}
}

// OpenSession opens a draft session
// @Summary Open Draft Session
// @Description Create a draft session holding the default draft. The returned token scopes every /draft call.
// @Tags Sessions
// @Produce json
// @Success 201 {object} dto.APIResponse{data=dto.OpenSessionResponse}
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sessions [post]
func (h *DraftHandler) OpenSession(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/sessions")
	defer cancel()

	result, err := h.draftFlow.OpenSession(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to open draft session", "DRAFT_SESSION_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// GetDraft returns the working draft
// @Summary Get Draft
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 401 {object} dto.APIResponse "Draft session missing or expired"
// @Router /api/v1/draft [get]
func (h *DraftHandler) GetDraft(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/draft")
	defer cancel()

	result, err := h.draftFlow.GetDraft(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to get draft", "GET_DRAFT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft retrieved successfully", result)
}

// ResetDraft discards the working draft
// @Summary Reset Draft
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 401 {object} dto.APIResponse "Draft session missing or expired"
// @Router /api/v1/draft [delete]
func (h *DraftHandler) ResetDraft(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/draft")
	defer cancel()

	result, err := h.draftFlow.ResetDraft(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to reset draft", "RESET_DRAFT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft reset successfully", result)
}

// UpdateDraft replaces the top-level fields present in the body
// @Summary Update Draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateDraftRequest true "Fields to replace"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Draft session missing or expired"
// @Failure 409 {object} dto.APIResponse "Concurrent modification"
// @Router /api/v1/draft [patch]
func (h *DraftHandler) UpdateDraft(c fiber.Ctx) error {
	var req dto.UpdateDraftRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft")
	defer cancel()

	result, err := h.draftFlow.UpdateDraft(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated successfully", result)
}

// UpdateAudience merges the audience keys present in the body
// @Summary Update Draft Audience
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateAudienceRequest true "Audience keys to replace"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Draft session missing or expired"
// @Router /api/v1/draft/audience [patch]
func (h *DraftHandler) UpdateAudience(c fiber.Ctx) error {
	var req dto.UpdateAudienceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/audience")
	defer cancel()

	result, err := h.draftFlow.UpdateAudience(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to update audience", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Audience updated successfully", result)
}

// SetUserIDs replaces the manual id list from comma separated text
// @Summary Set Manual User IDs
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SetUserIDsRequest true "Comma separated user ids"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 401 {object} dto.APIResponse "Draft session missing or expired"
// @Router /api/v1/draft/audience/user-ids [put]
func (h *DraftHandler) SetUserIDs(c fiber.Ctx) error {
	var req dto.SetUserIDsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/audience/user-ids")
	defer cancel()

	result, err := h.draftFlow.SetUserIDs(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to set user ids", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "User IDs updated successfully", result)
}

// UpdateInventory merges the inventory filter
// @Summary Update Inventory Filter
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateInventoryRequest true "Inventory fields"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/draft/filters/inventory [patch]
func (h *DraftHandler) UpdateInventory(c fiber.Ctx) error {
	var req dto.UpdateInventoryRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/filters/inventory")
	defer cancel()

	result, err := h.draftFlow.UpdateInventory(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to update inventory filter", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Inventory filter updated successfully", result)
}

// UpdateLeads merges the leads filter
// @Summary Update Leads Filter
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateLeadsRequest true "Leads fields"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/draft/filters/leads [patch]
func (h *DraftHandler) UpdateLeads(c fiber.Ctx) error {
	var req dto.UpdateLeadsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/filters/leads")
	defer cancel()

	result, err := h.draftFlow.UpdateLeads(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to update leads filter", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Leads filter updated successfully", result)
}

// SetUserType checks or unchecks one user type
// @Summary Set User Type
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type path string true "User type"
// @Param request body dto.SetAudienceOptionRequest true "Checkbox state"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/draft/audience/user-types/{type} [put]
func (h *DraftHandler) SetUserType(c fiber.Ctx) error {
	return h.setAudienceOption(c, "type", "/api/v1/draft/audience/user-types/", h.draftFlow.SetUserType, "User type updated successfully")
}

// SetUserClassification checks or unchecks one user classification
// @Summary Set User Classification
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param classification path string true "User classification"
// @Param request body dto.SetAudienceOptionRequest true "Checkbox state"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/draft/audience/classifications/{classification} [put]
func (h *DraftHandler) SetUserClassification(c fiber.Ctx) error {
	return h.setAudienceOption(c, "classification", "/api/v1/draft/audience/classifications/", h.draftFlow.SetUserClassification, "User classification updated successfully")
}

type audienceOptionSetter func(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error)

func (h *DraftHandler) setAudienceOption(c fiber.Ctx, param, endpoint string, set audienceOptionSetter, message string) error {
	var req dto.SetAudienceOptionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}
	req.Value = c.Params(param)

	ctx, cancel := h.createRequestContext(c, endpoint+req.Value)
	defer cancel()

	result, err := set(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to update audience", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, message, result)
}

// ToggleZone adds or removes a zone
// @Summary Toggle Zone
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param zone path string true "Zone id"
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Failure 400 {object} dto.APIResponse "Unknown zone"
// @Router /api/v1/draft/filters/zones/{zone}/toggle [post]
func (h *DraftHandler) ToggleZone(c fiber.Ctx) error {
	zone := c.Params("zone")

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/filters/zones/"+zone+"/toggle")
	defer cancel()

	result, err := h.draftFlow.ToggleZone(ctx, &dto.ToggleZoneRequest{Zone: zone}, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to toggle zone", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Zone toggled successfully", result)
}

// ClearFilters removes every secondary filter
// @Summary Clear Filters
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DraftResponse}
// @Router /api/v1/draft/filters [delete]
func (h *DraftHandler) ClearFilters(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/filters")
	defer cancel()

	result, err := h.draftFlow.ClearFilters(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to clear filters", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Filters cleared successfully", result)
}

// PreviewDraft renders the draft for display
// @Summary Preview Draft
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PreviewResponse}
// @Router /api/v1/draft/preview [get]
func (h *DraftHandler) PreviewDraft(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/preview")
	defer cancel()

	result, err := h.draftFlow.PreviewDraft(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to preview draft", "PREVIEW_DRAFT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Preview generated successfully", result)
}

// EstimateDraftAudience sizes the draft audience
// @Summary Estimate Draft Audience
// @Description Run the estimator for the session draft. With async=true the request returns immediately with a pending estimate.
// @Tags Drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EstimateDraftRequest false "Estimate options"
// @Success 200 {object} dto.APIResponse{data=dto.EstimateDraftResponse}
// @Success 202 {object} dto.APIResponse{data=dto.EstimateDraftResponse}
// @Failure 400 {object} dto.APIResponse "Empty or invalid query"
// @Failure 422 {object} dto.APIResponse "Estimation not supported"
// @Router /api/v1/draft/estimate [post]
func (h *DraftHandler) EstimateDraftAudience(c fiber.Ctx) error {
	var req dto.EstimateDraftRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/estimate")
	defer cancel()

	result, err := h.draftFlow.EstimateDraftAudience(ctx, &req, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to estimate audience", "ESTIMATION_FAILED")
	}

	status := fiber.StatusOK
	if req.Async && result.Estimate.Status == "pending" {
		status = fiber.StatusAccepted
	}
	return h.SuccessResponse(c, status, result.Message, result)
}

// GetEstimate returns the estimate state of the session
// @Summary Get Draft Estimate
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.EstimateDraftResponse}
// @Router /api/v1/draft/estimate [get]
func (h *DraftHandler) GetEstimate(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/estimate")
	defer cancel()

	result, err := h.draftFlow.GetEstimate(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to get estimate", "GET_ESTIMATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// SubmitDraft commits the session draft
// @Summary Submit Draft
// @Description Commit the draft to the history and reset it. Title and description are required.
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.APIResponse{data=dto.SubmitDraftResponse} "Notification created successfully!"
// @Failure 422 {object} dto.APIResponse "Title and description are required"
// @Router /api/v1/draft/submit [post]
func (h *DraftHandler) SubmitDraft(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/draft/submit")
	defer cancel()

	result, err := h.draftFlow.SubmitDraft(ctx, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Notification creation failed", "NOTIFICATION_CREATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// CloneNotification loads a committed notification into the session draft
// @Summary Clone Notification
// @Tags Drafts
// @Produce json
// @Security BearerAuth
// @Param uuid path string true "Notification UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CloneNotificationResponse}
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /api/v1/notifications/{uuid}/clone [post]
func (h *DraftHandler) CloneNotification(c fiber.Ctx) error {
	notificationUUID := c.Params("uuid")
	if notificationUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Notification UUID is required", "MISSING_NOTIFICATION_UUID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/notifications/"+notificationUUID+"/clone")
	defer cancel()

	result, err := h.draftFlow.CloneNotification(ctx, &dto.CloneNotificationRequest{UUID: notificationUUID}, h.metadata(c))
	if err != nil {
		return h.handleFlowError(c, err, "Failed to clone notification", "CLONE_NOTIFICATION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
