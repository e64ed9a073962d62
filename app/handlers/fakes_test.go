package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/notification-hub/app/dto"
	businessflow "github.com/amirphl/notification-hub/business_flow"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

// fakeNotificationFlow answers with canned results and records the last request
type fakeNotificationFlow struct {
	err error

	lastCreate   *dto.CreateNotificationRequest
	lastGetUUID  string
	lastList     *dto.ListNotificationsRequest
	lastEstimate *dto.EstimateAudienceRequest
	lastMeta     *businessflow.ClientMetadata
}

func (f *fakeNotificationFlow) CreateNotification(ctx context.Context, req *dto.CreateNotificationRequest, metadata *businessflow.ClientMetadata) (*dto.CreateNotificationResponse, error) {
	f.lastCreate, f.lastMeta = req, metadata
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CreateNotificationResponse{
		Message:      "Notification created successfully!",
		Notification: dto.NotificationItem{NotificationDraftDTO: req.NotificationDraftDTO, Status: "Active"},
	}, nil
}

func (f *fakeNotificationFlow) GetNotification(ctx context.Context, req *dto.GetNotificationRequest, metadata *businessflow.ClientMetadata) (*dto.GetNotificationResponse, error) {
	f.lastGetUUID = req.UUID
	if f.err != nil {
		return nil, f.err
	}
	return &dto.GetNotificationResponse{Message: "Notification retrieved successfully"}, nil
}

func (f *fakeNotificationFlow) ListNotifications(ctx context.Context, req *dto.ListNotificationsRequest, metadata *businessflow.ClientMetadata) (*dto.ListNotificationsResponse, error) {
	f.lastList = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ListNotificationsResponse{
		Message:    "Notifications retrieved successfully",
		Items:      []dto.NotificationItem{},
		Pagination: dto.PaginationInfo{Total: 0, Page: req.Page, Limit: req.Limit},
	}, nil
}

func (f *fakeNotificationFlow) ExportNotifications(ctx context.Context, req *dto.ListNotificationsRequest, metadata *businessflow.ClientMetadata) (*dto.ExportNotificationsResponse, error) {
	f.lastList = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExportNotificationsResponse{Filename: "notifications.xlsx", Content: []byte("PK-fake")}, nil
}

func (f *fakeNotificationFlow) EstimateAudience(ctx context.Context, req *dto.EstimateAudienceRequest, metadata *businessflow.ClientMetadata) (*dto.EstimateAudienceResponse, error) {
	f.lastEstimate = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.EstimateAudienceResponse{Message: "Estimated audience: 12 users", Count: 12}, nil
}

func (f *fakeNotificationFlow) ListAudienceOptions(ctx context.Context) (*dto.AudienceOptionsResponse, error) {
	return &dto.AudienceOptionsResponse{Message: "Audience options retrieved successfully"}, nil
}

func (f *fakeNotificationFlow) ExpireNotifications(ctx context.Context) (int64, error) {
	return 0, f.err
}

// fakeDraftFlow returns the same draft for every call unless err is set
type fakeDraftFlow struct {
	err      error
	estimate dto.EstimateDraftResponse

	lastMeta     *businessflow.ClientMetadata
	lastUpdate   *dto.UpdateDraftRequest
	lastZone     string
	lastOption   *dto.SetAudienceOptionRequest
	lastClone    string
	lastEstimate *dto.EstimateDraftRequest
}

func (f *fakeDraftFlow) draft(metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	f.lastMeta = metadata
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DraftResponse{SessionID: metadata.SessionID}, nil
}

func (f *fakeDraftFlow) OpenSession(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.OpenSessionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.OpenSessionResponse{Message: "Draft session opened successfully", SessionID: "s-1", Token: "tok", TokenType: "Bearer"}, nil
}

func (f *fakeDraftFlow) GetDraft(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) ResetDraft(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) UpdateDraft(ctx context.Context, req *dto.UpdateDraftRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	f.lastUpdate = req
	return f.draft(metadata)
}

func (f *fakeDraftFlow) UpdateAudience(ctx context.Context, req *dto.UpdateAudienceRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) SetUserIDs(ctx context.Context, req *dto.SetUserIDsRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) UpdateInventory(ctx context.Context, req *dto.UpdateInventoryRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) UpdateLeads(ctx context.Context, req *dto.UpdateLeadsRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) SetUserType(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	f.lastOption = req
	return f.draft(metadata)
}

func (f *fakeDraftFlow) SetUserClassification(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	f.lastOption = req
	return f.draft(metadata)
}

func (f *fakeDraftFlow) ToggleZone(ctx context.Context, req *dto.ToggleZoneRequest, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	f.lastZone = req.Zone
	return f.draft(metadata)
}

func (f *fakeDraftFlow) ClearFilters(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.DraftResponse, error) {
	return f.draft(metadata)
}

func (f *fakeDraftFlow) PreviewDraft(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.PreviewResponse, error) {
	f.lastMeta = metadata
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PreviewResponse{Title: "Preview"}, nil
}

func (f *fakeDraftFlow) EstimateDraftAudience(ctx context.Context, req *dto.EstimateDraftRequest, metadata *businessflow.ClientMetadata) (*dto.EstimateDraftResponse, error) {
	f.lastEstimate, f.lastMeta = req, metadata
	if f.err != nil {
		return nil, f.err
	}
	resp := f.estimate
	return &resp, nil
}

func (f *fakeDraftFlow) GetEstimate(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.EstimateDraftResponse, error) {
	f.lastMeta = metadata
	if f.err != nil {
		return nil, f.err
	}
	resp := f.estimate
	return &resp, nil
}

func (f *fakeDraftFlow) SubmitDraft(ctx context.Context, metadata *businessflow.ClientMetadata) (*dto.SubmitDraftResponse, error) {
	f.lastMeta = metadata
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SubmitDraftResponse{Message: "Notification created successfully!"}, nil
}

func (f *fakeDraftFlow) CloneNotification(ctx context.Context, req *dto.CloneNotificationRequest, metadata *businessflow.ClientMetadata) (*dto.CloneNotificationResponse, error) {
	f.lastClone, f.lastMeta = req.UUID, metadata
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CloneNotificationResponse{Message: "Notification cloned. Make your changes and save to create a new notification."}, nil
}

func (f *fakeDraftFlow) WaitForEstimates(ctx context.Context) error {
	return nil
}

// apiResult is the decoded response envelope
type apiResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// withSession stands in for the session middleware
func withSession(sessionID string) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals("session_id", sessionID)
		return c.Next()
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, apiResult) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", "req-1")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var result apiResult
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &result), string(raw))
	}
	return resp, result
}
