package handlers

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/amirphl/notification-hub/app/dto"
	businessflow "github.com/amirphl/notification-hub/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftApp(flow *fakeDraftFlow) *fiber.App {
	h := NewDraftHandler(flow)
	app := fiber.New()
	app.Post("/sessions", h.OpenSession)

	draft := app.Group("/draft", withSession("sess-1"))
	draft.Get("/", h.GetDraft)
	draft.Patch("/", h.UpdateDraft)
	draft.Delete("/", h.ResetDraft)
	draft.Patch("/audience", h.UpdateAudience)
	draft.Put("/audience/user-ids", h.SetUserIDs)
	draft.Put("/audience/user-types/:type", h.SetUserType)
	draft.Put("/audience/classifications/:classification", h.SetUserClassification)
	draft.Delete("/filters", h.ClearFilters)
	draft.Patch("/filters/inventory", h.UpdateInventory)
	draft.Patch("/filters/leads", h.UpdateLeads)
	draft.Post("/filters/zones/:zone/toggle", h.ToggleZone)
	draft.Get("/preview", h.PreviewDraft)
	draft.Get("/estimate", h.GetEstimate)
	draft.Post("/estimate", h.EstimateDraftAudience)
	draft.Post("/submit", h.SubmitDraft)

	app.Post("/notifications/:uuid/clone", withSession("sess-1"), h.CloneNotification)
	return app
}

func TestOpenSessionHandler(t *testing.T) {
	resp, result := doRequest(t, newDraftApp(&fakeDraftFlow{}), "POST", "/sessions", "")

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var data dto.OpenSessionResponse
	require.NoError(t, json.Unmarshal(result.Data, &data))
	assert.Equal(t, "s-1", data.SessionID)
	assert.Equal(t, "Bearer", data.TokenType)
}

func TestDraftHandlersPassSession(t *testing.T) {
	routes := []struct {
		method, target, body, message string
	}{
		{"GET", "/draft", "", "Draft retrieved successfully"},
		{"DELETE", "/draft", "", "Draft reset successfully"},
		{"PATCH", "/draft", `{"title":"Hello"}`, "Draft updated successfully"},
		{"PATCH", "/draft/audience", `{"selection_method":"manual","user_ids":["1","2"]}`, "Audience updated successfully"},
		{"PUT", "/draft/audience/user-ids", `{"text":"1, 2,,3"}`, "User IDs updated successfully"},
		{"PUT", "/draft/audience/user-types/owner", `{"checked":true}`, "User type updated successfully"},
		{"PUT", "/draft/audience/classifications/vip", `{"checked":false}`, "User classification updated successfully"},
		{"DELETE", "/draft/filters", "", "Filters cleared successfully"},
		{"PATCH", "/draft/filters/inventory", `{"active":true}`, "Inventory filter updated successfully"},
		{"PATCH", "/draft/filters/leads", `{"quantity":10}`, "Leads filter updated successfully"},
		{"POST", "/draft/filters/zones/north/toggle", "", "Zone toggled successfully"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.target, func(t *testing.T) {
			flow := &fakeDraftFlow{}
			resp, result := doRequest(t, newDraftApp(flow), rt.method, rt.target, rt.body)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, rt.message, result.Message)
			require.NotNil(t, flow.lastMeta)
			assert.Equal(t, "sess-1", flow.lastMeta.SessionID)
			assert.Equal(t, "req-1", flow.lastMeta.RequestID)

			var data dto.DraftResponse
			require.NoError(t, json.Unmarshal(result.Data, &data))
			assert.Equal(t, "sess-1", data.SessionID)
		})
	}
}

func TestUpdateDraftHandlerValidation(t *testing.T) {
	t.Run("bad type", func(t *testing.T) {
		flow := &fakeDraftFlow{}
		resp, result := doRequest(t, newDraftApp(flow), "PATCH", "/draft", `{"type":"silver"}`)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)
		assert.Nil(t, flow.lastUpdate)
	})

	t.Run("leads age out of range", func(t *testing.T) {
		flow := &fakeDraftFlow{}
		resp, result := doRequest(t, newDraftApp(flow), "PATCH", "/draft/filters/leads", `{"age_in_days":400}`)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)
		assert.Nil(t, flow.lastMeta)
	})

	t.Run("empty update", func(t *testing.T) {
		flow := &fakeDraftFlow{err: businessflow.NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", businessflow.ErrDraftUpdateRequired)}
		resp, result := doRequest(t, newDraftApp(flow), "PATCH", "/draft", `{}`)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)
		assert.JSONEq(t, `"at least one field must be provided for update"`, string(result.Error.Details))
	})
}

func TestToggleZoneHandler(t *testing.T) {
	flow := &fakeDraftFlow{err: businessflow.NewBusinessErrorf("UNKNOWN_ZONE", "Unknown zone %q", businessflow.ErrUnknownZone, "atlantis")}
	resp, result := doRequest(t, newDraftApp(flow), "POST", "/draft/filters/zones/atlantis/toggle", "")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_ZONE", result.Error.Code)
	assert.Equal(t, "atlantis", flow.lastZone)
}

func TestSetAudienceOptionHandlers(t *testing.T) {
	t.Run("passes value and state", func(t *testing.T) {
		flow := &fakeDraftFlow{}
		resp, _ := doRequest(t, newDraftApp(flow), "PUT", "/draft/audience/user-types/big-broker", `{"checked":false}`)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, flow.lastOption)
		assert.Equal(t, "big-broker", flow.lastOption.Value)
		require.NotNil(t, flow.lastOption.Checked)
		assert.False(t, *flow.lastOption.Checked)
	})

	t.Run("checked is required", func(t *testing.T) {
		flow := &fakeDraftFlow{}
		resp, result := doRequest(t, newDraftApp(flow), "PUT", "/draft/audience/classifications/vip", `{}`)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)
		assert.Nil(t, flow.lastOption)
	})

	t.Run("unknown value", func(t *testing.T) {
		flow := &fakeDraftFlow{err: businessflow.NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", businessflow.ErrInvalidUserType)}
		resp, result := doRequest(t, newDraftApp(flow), "PUT", "/draft/audience/user-types/landlord", `{"checked":true}`)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", result.Error.Code)
		assert.Equal(t, "landlord", flow.lastOption.Value)
	})
}

func TestDraftHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"session required", businessflow.NewBusinessError("DRAFT_SESSION_REQUIRED", "Draft session is required", businessflow.ErrDraftSessionRequired), fiber.StatusUnauthorized, "DRAFT_SESSION_REQUIRED"},
		{"session gone", businessflow.NewBusinessError("DRAFT_SESSION_NOT_FOUND", "Draft session not found", businessflow.ErrDraftSessionNotFound), fiber.StatusUnauthorized, "DRAFT_SESSION_NOT_FOUND"},
		{"conflict", businessflow.NewBusinessError("DRAFT_CONFLICT", "Draft conflict", businessflow.ErrDraftConflict), fiber.StatusConflict, "DRAFT_CONFLICT"},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError, "GET_DRAFT_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, result := doRequest(t, newDraftApp(&fakeDraftFlow{err: tt.err}), "GET", "/draft", "")

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, result.Error.Code)
			assert.False(t, result.Success)
		})
	}
}

func TestEstimateDraftAudienceHandler(t *testing.T) {
	count := 42

	t.Run("sync without body", func(t *testing.T) {
		flow := &fakeDraftFlow{estimate: dto.EstimateDraftResponse{
			Message:  "Estimated audience: 42 users",
			Estimate: dto.EstimateDTO{Status: "ready", Count: &count, Token: 1},
		}}
		resp, result := doRequest(t, newDraftApp(flow), "POST", "/draft/estimate", "")

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Estimated audience: 42 users", result.Message)
		require.NotNil(t, flow.lastEstimate)
		assert.False(t, flow.lastEstimate.Async)
	})

	t.Run("async pending", func(t *testing.T) {
		flow := &fakeDraftFlow{estimate: dto.EstimateDraftResponse{
			Message:  "Estimating audience...",
			Estimate: dto.EstimateDTO{Status: "pending", Token: 2},
		}}
		resp, result := doRequest(t, newDraftApp(flow), "POST", "/draft/estimate", `{"async":true}`)

		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "Estimating audience...", result.Message)
		assert.True(t, flow.lastEstimate.Async)
	})

	t.Run("async settled immediately", func(t *testing.T) {
		flow := &fakeDraftFlow{estimate: dto.EstimateDraftResponse{
			Message:  "Estimated audience: 42 users",
			Estimate: dto.EstimateDTO{Status: "ready", Count: &count, Method: "manual"},
		}}
		resp, _ := doRequest(t, newDraftApp(flow), "POST", "/draft/estimate", `{"async":true}`)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("empty query", func(t *testing.T) {
		flow := &fakeDraftFlow{err: businessflow.NewBusinessError("USER_QUERY_REQUIRED", "Please enter a valid SQL query first", businessflow.ErrUserQueryRequired)}
		resp, result := doRequest(t, newDraftApp(flow), "POST", "/draft/estimate", "")

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "USER_QUERY_REQUIRED", result.Error.Code)
	})

	t.Run("current state", func(t *testing.T) {
		flow := &fakeDraftFlow{estimate: dto.EstimateDraftResponse{Message: "No estimate available", Estimate: dto.EstimateDTO{Status: "idle"}}}
		resp, result := doRequest(t, newDraftApp(flow), "GET", "/draft/estimate", "")

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "No estimate available", result.Message)
	})
}

func TestSubmitDraftHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		resp, result := doRequest(t, newDraftApp(&fakeDraftFlow{}), "POST", "/draft/submit", "")

		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, "Notification created successfully!", result.Message)
	})

	t.Run("gated", func(t *testing.T) {
		flow := &fakeDraftFlow{err: businessflow.NewBusinessError("DRAFT_NOT_SUBMITTABLE", "Title and description are required", businessflow.ErrDraftNotSubmittable)}
		resp, result := doRequest(t, newDraftApp(flow), "POST", "/draft/submit", "")

		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "DRAFT_NOT_SUBMITTABLE", result.Error.Code)
	})
}

func TestPreviewDraftHandler(t *testing.T) {
	resp, result := doRequest(t, newDraftApp(&fakeDraftFlow{}), "GET", "/draft/preview", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var data dto.PreviewResponse
	require.NoError(t, json.Unmarshal(result.Data, &data))
	assert.Equal(t, "Preview", data.Title)
}

func TestCloneNotificationHandler(t *testing.T) {
	t.Run("cloned", func(t *testing.T) {
		flow := &fakeDraftFlow{}
		resp, result := doRequest(t, newDraftApp(flow), "POST", "/notifications/abc/clone", "")

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "abc", flow.lastClone)
		assert.Equal(t, "sess-1", flow.lastMeta.SessionID)
		assert.Contains(t, result.Message, "Notification cloned")
	})

	t.Run("missing", func(t *testing.T) {
		flow := &fakeDraftFlow{err: businessflow.NewBusinessError("NOTIFICATION_NOT_FOUND", "Notification not found", businessflow.ErrNotificationNotFound)}
		resp, result := doRequest(t, newDraftApp(flow), "POST", "/notifications/abc/clone", "")

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOTIFICATION_NOT_FOUND", result.Error.Code)
	})
}
