// Package businessflow contains the core business logic and use cases for draft session workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/app/services"
	"github.com/amirphl/notification-hub/config"
	"github.com/amirphl/notification-hub/models"
	"github.com/amirphl/notification-hub/repository"
	"github.com/amirphl/notification-hub/utils"
	"github.com/google/uuid"
)

// settleTimeout bounds the store write that settles an estimate after the provider returns
const settleTimeout = 5 * time.Second

var errDraftMovedOn = errors.New("draft session changed since submit")

// DraftFlow handles the working draft of an operator session
type DraftFlow interface {
	OpenSession(ctx context.Context, metadata *ClientMetadata) (*dto.OpenSessionResponse, error)
	GetDraft(ctx context.Context, metadata *ClientMetadata) (*dto.DraftResponse, error)
	ResetDraft(ctx context.Context, metadata *ClientMetadata) (*dto.DraftResponse, error)
	UpdateDraft(ctx context.Context, req *dto.UpdateDraftRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	UpdateAudience(ctx context.Context, req *dto.UpdateAudienceRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	SetUserIDs(ctx context.Context, req *dto.SetUserIDsRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	SetUserType(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	SetUserClassification(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	UpdateInventory(ctx context.Context, req *dto.UpdateInventoryRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	UpdateLeads(ctx context.Context, req *dto.UpdateLeadsRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	ToggleZone(ctx context.Context, req *dto.ToggleZoneRequest, metadata *ClientMetadata) (*dto.DraftResponse, error)
	ClearFilters(ctx context.Context, metadata *ClientMetadata) (*dto.DraftResponse, error)
	PreviewDraft(ctx context.Context, metadata *ClientMetadata) (*dto.PreviewResponse, error)
	EstimateDraftAudience(ctx context.Context, req *dto.EstimateDraftRequest, metadata *ClientMetadata) (*dto.EstimateDraftResponse, error)
	GetEstimate(ctx context.Context, metadata *ClientMetadata) (*dto.EstimateDraftResponse, error)
	SubmitDraft(ctx context.Context, metadata *ClientMetadata) (*dto.SubmitDraftResponse, error)
	CloneNotification(ctx context.Context, req *dto.CloneNotificationRequest, metadata *ClientMetadata) (*dto.CloneNotificationResponse, error)
	WaitForEstimates(ctx context.Context) error
}

// DraftFlowImpl implements the draft business flow
type DraftFlowImpl struct {
	store            repository.DraftStore
	notificationRepo repository.NotificationRepository
	estimator        services.AudienceEstimator
	tokens           services.TokenService
	notificationCfg  config.NotificationConfig
	estimatorCfg     config.EstimatorConfig
	now              func() time.Time
	newID            func() string
	inflight         sync.WaitGroup
}

// NewDraftFlow creates a new draft flow instance
func NewDraftFlow(
	store repository.DraftStore,
	notificationRepo repository.NotificationRepository,
	estimator services.AudienceEstimator,
	tokens services.TokenService,
	notificationCfg config.NotificationConfig,
	estimatorCfg config.EstimatorConfig,
) DraftFlow {
	return &DraftFlowImpl{
		store:            store,
		notificationRepo: notificationRepo,
		estimator:        estimator,
		tokens:           tokens,
		notificationCfg:  notificationCfg,
		estimatorCfg:     estimatorCfg,
		now:              utils.UTCNow,
		newID:            uuid.NewString,
	}
}

// OpenSession creates a draft session holding the default draft and issues its token
func (s *DraftFlowImpl) OpenSession(ctx context.Context, metadata *ClientMetadata) (*dto.OpenSessionResponse, error) {
	now := s.now()
	session := models.NewDraftSession(s.newID(), s.notificationCfg.DefaultCTAText, now)

	if err := s.store.Create(ctx, session); err != nil {
		return nil, NewBusinessError("DRAFT_SESSION_CREATION_FAILED", "Failed to open draft session", err)
	}

	token, expiresAt, err := s.tokens.GenerateSessionToken(session.ID)
	if err != nil {
		if delErr := s.store.Delete(ctx, session.ID); delErr != nil {
			log.Printf("failed to discard draft session %s: %v", session.ID, delErr)
		}
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate session token", err)
	}

	draftSessionsOpenedTotal.Inc()

	return &dto.OpenSessionResponse{
		Message:   "Draft session opened successfully",
		SessionID: session.ID,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(expiresAt.Sub(now).Seconds()),
		Draft:     ToDraftResponse(session),
	}, nil
}

// GetDraft returns the working draft of the session
func (s *DraftFlowImpl) GetDraft(ctx context.Context, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	session, err := s.load(ctx, metadata)
	if err != nil {
		return nil, err
	}
	resp := ToDraftResponse(session)
	return &resp, nil
}

// ResetDraft discards the working draft
func (s *DraftFlowImpl) ResetDraft(ctx context.Context, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		sess.ResetDraft(s.notificationCfg.DefaultCTAText, now)
		return nil
	})
}

// UpdateDraft replaces each top-level field present in the request
func (s *DraftFlowImpl) UpdateDraft(ctx context.Context, req *dto.UpdateDraftRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	type change struct {
		field models.DraftField
		value *string
	}
	changes := []change{
		{models.DraftFieldTitle, req.Title},
		{models.DraftFieldDescription, req.Description},
		{models.DraftFieldCTAText, req.CTAText},
		{models.DraftFieldCTALink, req.CTALink},
		{models.DraftFieldType, req.Type},
	}

	present := 0
	for _, c := range changes {
		if c.value != nil {
			present++
		}
	}
	if present == 0 {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", ErrDraftUpdateRequired)
	}
	if req.Type != nil && !models.NotificationType(*req.Type).Valid() {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", ErrInvalidNotificationType)
	}

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		d := sess.Draft
		for _, c := range changes {
			if c.value != nil {
				d = models.UpdateField(d, c.field, *c.value)
			}
		}
		sess.Apply(d, now)
		return nil
	})
}

// UpdateAudience shallow-merges the present audience keys into the draft
func (s *DraftFlowImpl) UpdateAudience(ctx context.Context, req *dto.UpdateAudienceRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	if req.SelectionMethod == nil && req.UserTypes == nil && req.UserClassifications == nil && req.UserIDs == nil && req.UserQuery == nil {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", ErrDraftUpdateRequired)
	}

	patch, err := toAudiencePatch(*req)
	if err != nil {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", err)
	}

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		if patch.UserIDs != nil {
			// ids and their text stay in sync
			ids := models.ParseUserIDList(strings.Join(*patch.UserIDs, ","))
			patch.UserIDs = &ids
			sess.ManualUserIDsText = strings.Join(ids, ", ")
		}
		sess.Apply(models.UpdateAudience(sess.Draft, patch), now)
		return nil
	})
}

// SetUserIDs parses raw comma separated text into the manual id list
func (s *DraftFlowImpl) SetUserIDs(ctx context.Context, req *dto.SetUserIDsRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		sess.SetManualUserIDs(req.Text, now)
		return nil
	})
}

// SetUserType checks or unchecks one user type of the feed audience
func (s *DraftFlowImpl) SetUserType(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	userType := models.UserType(strings.TrimSpace(req.Value))
	if !userType.Valid() {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", fmt.Errorf("%w: %q", ErrInvalidUserType, req.Value))
	}
	checked := req.Checked != nil && *req.Checked

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		types := models.SetUserType(sess.Draft.Audience.UserTypes, userType, checked)
		sess.Apply(models.UpdateAudience(sess.Draft, models.AudiencePatch{UserTypes: &types}), now)
		return nil
	})
}

// SetUserClassification checks or unchecks one classification of the feed audience
func (s *DraftFlowImpl) SetUserClassification(ctx context.Context, req *dto.SetAudienceOptionRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	class := models.UserClassification(strings.TrimSpace(req.Value))
	if !class.Valid() {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", fmt.Errorf("%w: %q", ErrInvalidUserClassification, req.Value))
	}
	checked := req.Checked != nil && *req.Checked

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		classes := models.SetClassification(sess.Draft.Audience.UserClassifications, class, checked)
		sess.Apply(models.UpdateAudience(sess.Draft, models.AudiencePatch{UserClassifications: &classes}), now)
		return nil
	})
}

// UpdateInventory merges the inventory fields present in the request
func (s *DraftFlowImpl) UpdateInventory(ctx context.Context, req *dto.UpdateInventoryRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	if req.Active == nil && req.Quantity == nil {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", ErrDraftUpdateRequired)
	}
	if req.Quantity != nil {
		if err := validateQuantity(*req.Quantity); err != nil {
			return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", err)
		}
	}

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		var current *models.InventoryFilter
		if sess.Draft.Filters != nil {
			current = sess.Draft.Filters.Inventory
		}
		merged := models.MergeInventory(current, models.InventoryPatch{Active: req.Active, Quantity: req.Quantity})
		sess.Apply(models.UpdateFilters(sess.Draft, models.FiltersPatch{Inventory: &merged}), now)
		return nil
	})
}

// UpdateLeads merges the leads fields present in the request
func (s *DraftFlowImpl) UpdateLeads(ctx context.Context, req *dto.UpdateLeadsRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	if req.Quantity == nil && req.AgeInDays == nil {
		return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", ErrDraftUpdateRequired)
	}
	if req.Quantity != nil {
		if err := validateQuantity(*req.Quantity); err != nil {
			return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", err)
		}
	}
	if req.AgeInDays != nil {
		if err := validateAgeInDays(*req.AgeInDays); err != nil {
			return nil, NewBusinessError("DRAFT_VALIDATION_FAILED", "Draft validation failed", err)
		}
	}

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		var current *models.LeadsFilter
		if sess.Draft.Filters != nil {
			current = sess.Draft.Filters.Leads
		}
		merged := models.MergeLeads(current, models.LeadsPatch{Quantity: req.Quantity, AgeInDays: req.AgeInDays})
		sess.Apply(models.UpdateFilters(sess.Draft, models.FiltersPatch{Leads: &merged}), now)
		return nil
	})
}

// ToggleZone adds or removes one zone from the draft filters
func (s *DraftFlowImpl) ToggleZone(ctx context.Context, req *dto.ToggleZoneRequest, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	zone := strings.TrimSpace(req.Zone)
	if !models.IsKnownZone(zone) {
		return nil, NewBusinessErrorf("UNKNOWN_ZONE", "Unknown zone %q", ErrUnknownZone, zone)
	}

	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		var current []string
		if sess.Draft.Filters != nil {
			current = sess.Draft.Filters.Zones
		}
		zones := models.ToggleZone(current, zone)
		sess.Apply(models.UpdateFilters(sess.Draft, models.FiltersPatch{Zones: &zones}), now)
		return nil
	})
}

// ClearFilters removes every secondary filter from the draft
func (s *DraftFlowImpl) ClearFilters(ctx context.Context, metadata *ClientMetadata) (*dto.DraftResponse, error) {
	return s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		sess.Apply(models.ClearFilters(sess.Draft), now)
		return nil
	})
}

// PreviewDraft projects the working draft for display
func (s *DraftFlowImpl) PreviewDraft(ctx context.Context, metadata *ClientMetadata) (*dto.PreviewResponse, error) {
	session, err := s.load(ctx, metadata)
	if err != nil {
		return nil, err
	}
	preview := BuildPreview(session.Draft)
	return &preview, nil
}

// EstimateDraftAudience sizes the session audience. Only the latest request may store its count.
func (s *DraftFlowImpl) EstimateDraftAudience(ctx context.Context, req *dto.EstimateDraftRequest, metadata *ClientMetadata) (*dto.EstimateDraftResponse, error) {
	sessionID, err := sessionIDFrom(metadata)
	if err != nil {
		return nil, err
	}

	var (
		token     uint64
		immediate bool
		audience  models.AudienceSpec
		filters   *models.FilterSpec
	)
	session, err := s.store.Update(ctx, sessionID, func(sess *models.DraftSession) error {
		now := s.now()
		a := sess.Draft.Audience
		switch a.SelectionMethod {
		case models.SelectionMethodManual:
			sess.Estimate.SetImmediate(models.SelectionMethodManual, len(a.UserIDs), now)
			immediate = true
			return nil
		case models.SelectionMethodQuery:
			if !a.HasUserQuery() {
				return ErrUserQueryRequired
			}
		}
		token = sess.Estimate.Begin(a.SelectionMethod, now)
		audience = a.Clone()
		filters = sess.Draft.Filters.Clone()
		return nil
	})
	if err != nil {
		if IsUserQueryRequired(err) {
			audienceEstimatesTotal.WithLabelValues(models.SelectionMethodQuery.String(), estimateOutcomeRejected).Inc()
			return nil, estimateBusinessError(err)
		}
		return nil, storeBusinessError(err)
	}

	if immediate {
		audienceEstimatesTotal.WithLabelValues(models.SelectionMethodManual.String(), estimateOutcomeResolved).Inc()
		return &dto.EstimateDraftResponse{
			Message:  fmt.Sprintf("Estimated audience: %d users", *session.Estimate.Count),
			Estimate: ToEstimateDTO(session.Estimate),
		}, nil
	}

	if req.Async {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			bg, cancel := context.WithTimeout(context.Background(), s.estimatorCfg.Timeout)
			defer cancel()
			if _, _, err := s.runEstimate(bg, sessionID, token, audience, filters); err != nil {
				log.Printf("async estimate for draft session %s failed: %v", sessionID, err)
			}
		}()

		return &dto.EstimateDraftResponse{
			Message:  "Estimating audience...",
			Estimate: ToEstimateDTO(session.Estimate),
		}, nil
	}

	ectx, cancel := context.WithTimeout(ctx, s.estimatorCfg.Timeout)
	defer cancel()

	settled, stale, err := s.runEstimate(ectx, sessionID, token, audience, filters)
	if err != nil {
		return nil, err
	}
	if stale {
		return &dto.EstimateDraftResponse{
			Message:  "Estimate discarded because the audience changed",
			Estimate: ToEstimateDTO(settled.Estimate),
			Stale:    true,
		}, nil
	}

	return &dto.EstimateDraftResponse{
		Message:  fmt.Sprintf("Estimated audience: %d users", *settled.Estimate.Count),
		Estimate: ToEstimateDTO(settled.Estimate),
	}, nil
}

// runEstimate calls the provider without holding the session and settles the request token.
// A result whose token is no longer current is discarded and reported as stale.
func (s *DraftFlowImpl) runEstimate(ctx context.Context, sessionID string, token uint64, audience models.AudienceSpec, filters *models.FilterSpec) (*models.DraftSession, bool, error) {
	count, estErr := estimateAudience(ctx, s.estimator, audience, filters)

	// the provider context may be spent, the pending state still has to settle
	settleCtx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	var applied bool
	session, err := s.store.Update(settleCtx, sessionID, func(sess *models.DraftSession) error {
		now := s.now()
		if estErr != nil {
			applied = sess.Estimate.Fail(token, now)
		} else {
			applied = sess.Estimate.Resolve(token, count, now)
		}
		return nil
	})
	if err != nil {
		return nil, false, storeBusinessError(err)
	}

	if !applied {
		audienceEstimatesTotal.WithLabelValues(audience.SelectionMethod.String(), estimateOutcomeStale).Inc()
		return session, true, nil
	}
	if estErr != nil {
		return nil, false, estimateBusinessError(estErr)
	}
	return session, false, nil
}

// GetEstimate returns the estimate state of the session
func (s *DraftFlowImpl) GetEstimate(ctx context.Context, metadata *ClientMetadata) (*dto.EstimateDraftResponse, error) {
	session, err := s.load(ctx, metadata)
	if err != nil {
		return nil, err
	}

	msg := "No estimate available"
	switch session.Estimate.Status {
	case models.EstimateStatusPending:
		msg = "Estimating audience..."
	case models.EstimateStatusResolved:
		msg = fmt.Sprintf("Estimated audience: %d users", *session.Estimate.Count)
	}

	return &dto.EstimateDraftResponse{
		Message:  msg,
		Estimate: ToEstimateDTO(session.Estimate),
	}, nil
}

// SubmitDraft claims the working draft and resets the session in one store write, then commits
// the claimed draft. A failed commit puts the draft back unless the session moved on meanwhile.
func (s *DraftFlowImpl) SubmitDraft(ctx context.Context, metadata *ClientMetadata) (*dto.SubmitDraftResponse, error) {
	sessionID, err := sessionIDFrom(metadata)
	if err != nil {
		return nil, err
	}

	var claimed models.DraftSession
	reset, err := s.store.Update(ctx, sessionID, func(sess *models.DraftSession) error {
		if !sess.Draft.CanSubmit() {
			return ErrDraftNotSubmittable
		}
		claimed = *sess
		claimed.Draft = sess.Draft.Clone()
		sess.ResetDraft(s.notificationCfg.DefaultCTAText, s.now())
		return nil
	})
	if err != nil {
		if IsDraftNotSubmittable(err) {
			return nil, NewBusinessError("DRAFT_NOT_SUBMITTABLE", "Title and description are required", err)
		}
		return nil, storeBusinessError(err)
	}

	notification, err := commitNotification(ctx, s.notificationRepo, claimed.Draft, s.notificationCfg.TTL, s.now())
	if err != nil {
		s.restoreClaimed(sessionID, &claimed, reset.Revision)
		if IsDraftNotSubmittable(err) {
			return nil, NewBusinessError("DRAFT_NOT_SUBMITTABLE", "Title and description are required", err)
		}
		return nil, NewBusinessError("NOTIFICATION_CREATION_FAILED", "Notification creation failed", err)
	}

	return &dto.SubmitDraftResponse{
		Message:      "Notification created successfully!",
		Notification: ToNotificationItem(notification, s.now()),
		Draft:        ToDraftResponse(reset),
	}, nil
}

// restoreClaimed puts a claimed draft back when the session is still at the reset revision
func (s *DraftFlowImpl) restoreClaimed(sessionID string, claimed *models.DraftSession, resetRevision uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	_, err := s.store.Update(ctx, sessionID, func(sess *models.DraftSession) error {
		if sess.Revision != resetRevision {
			return errDraftMovedOn
		}
		now := s.now()
		sess.LoadDraft(claimed.Draft, now)
		sess.ManualUserIDsText = claimed.ManualUserIDsText
		return nil
	})
	switch {
	case errors.Is(err, errDraftMovedOn):
		log.Printf("draft session %s changed during a failed submit, claimed draft dropped", sessionID)
	case err != nil:
		log.Printf("failed to restore draft session %s after a failed submit: %v", sessionID, err)
	}
}

// CloneNotification re-seeds the working draft from a committed notification
func (s *DraftFlowImpl) CloneNotification(ctx context.Context, req *dto.CloneNotificationRequest, metadata *ClientMetadata) (*dto.CloneNotificationResponse, error) {
	notification, err := getNotification(ctx, s.notificationRepo, req.UUID)
	if err != nil {
		return nil, err
	}

	draft, err := s.update(ctx, metadata, func(sess *models.DraftSession, now time.Time) error {
		sess.LoadDraft(notification.ToDraft(), now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.CloneNotificationResponse{
		Message: "Notification cloned. Make your changes and save to create a new notification.",
		Draft:   *draft,
	}, nil
}

// WaitForEstimates blocks until every asynchronous estimate settled or ctx is done
func (s *DraftFlowImpl) WaitForEstimates(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *DraftFlowImpl) load(ctx context.Context, metadata *ClientMetadata) (*models.DraftSession, error) {
	sessionID, err := sessionIDFrom(metadata)
	if err != nil {
		return nil, err
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, storeBusinessError(err)
	}
	return session, nil
}

func (s *DraftFlowImpl) update(ctx context.Context, metadata *ClientMetadata, fn func(sess *models.DraftSession, now time.Time) error) (*dto.DraftResponse, error) {
	sessionID, err := sessionIDFrom(metadata)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Update(ctx, sessionID, func(sess *models.DraftSession) error {
		return fn(sess, s.now())
	})
	if err != nil {
		return nil, storeBusinessError(err)
	}

	resp := ToDraftResponse(session)
	return &resp, nil
}

func sessionIDFrom(metadata *ClientMetadata) (string, error) {
	if metadata == nil || metadata.SessionID == "" {
		return "", NewBusinessError("DRAFT_SESSION_REQUIRED", "Draft session is required", ErrDraftSessionRequired)
	}
	return metadata.SessionID, nil
}

func storeBusinessError(err error) error {
	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrDraftSessionNotFound):
		return NewBusinessError("DRAFT_SESSION_NOT_FOUND", "Draft session not found or expired", fmt.Errorf("%w: %w", ErrDraftSessionNotFound, err))
	case errors.Is(err, repository.ErrDraftConflict):
		return NewBusinessError("DRAFT_CONFLICT", "Draft was modified concurrently, please retry", fmt.Errorf("%w: %w", ErrDraftConflict, err))
	}
	return NewBusinessError("DRAFT_STORE_FAILED", "Failed to access draft session", err)
}
