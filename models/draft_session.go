package models

import (
	"slices"
	"strings"
	"time"
)

// EstimateStatus is the state of the audience count estimate of a draft session
type EstimateStatus string

const (
	EstimateStatusIdle     EstimateStatus = "idle"
	EstimateStatusPending  EstimateStatus = "pending"
	EstimateStatusResolved EstimateStatus = "resolved"
)

// AudienceEstimate tracks the last count estimate. Token grows on every request and
// every invalidation; only a completion carrying the current token may write a result.
type AudienceEstimate struct {
	Status    EstimateStatus  `json:"status"`
	Count     *int            `json:"count,omitempty"`
	Token     uint64          `json:"token"`
	Method    SelectionMethod `json:"method,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// Begin enters the pending state and returns the request token
func (e *AudienceEstimate) Begin(method SelectionMethod, now time.Time) uint64 {
	e.Token++
	e.Status = EstimateStatusPending
	e.Count = nil
	e.Method = method
	e.UpdatedAt = &now
	return e.Token
}

// Resolve stores count when token is still current. It reports whether the result was applied.
func (e *AudienceEstimate) Resolve(token uint64, count int, now time.Time) bool {
	if token != e.Token || e.Status != EstimateStatusPending {
		return false
	}
	e.Status = EstimateStatusResolved
	e.Count = &count
	e.UpdatedAt = &now
	return true
}

// Fail returns a pending estimate to idle when token is still current
func (e *AudienceEstimate) Fail(token uint64, now time.Time) bool {
	if token != e.Token || e.Status != EstimateStatusPending {
		return false
	}
	e.Status = EstimateStatusIdle
	e.UpdatedAt = &now
	return true
}

// Invalidate drops any result and makes in-flight requests stale
func (e *AudienceEstimate) Invalidate(now time.Time) {
	e.Token++
	e.Status = EstimateStatusIdle
	e.Count = nil
	e.Method = ""
	e.UpdatedAt = &now
}

// SetImmediate records a synchronously known count
func (e *AudienceEstimate) SetImmediate(method SelectionMethod, count int, now time.Time) {
	e.Token++
	e.Status = EstimateStatusResolved
	e.Count = &count
	e.Method = method
	e.UpdatedAt = &now
}

// DraftSession owns the working draft of one operator session
type DraftSession struct {
	ID                string            `json:"id"`
	Draft             NotificationDraft `json:"draft"`
	ManualUserIDsText string            `json:"manual_user_ids_text"`
	Estimate          AudienceEstimate  `json:"estimate"`
	Revision          uint64            `json:"revision"` // bumped by every store write
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewDraftSession creates a session holding the default draft
func NewDraftSession(id, defaultCTAText string, now time.Time) *DraftSession {
	return &DraftSession{
		ID:        id,
		Draft:     NewDraft(defaultCTAText),
		Estimate:  AudienceEstimate{Status: EstimateStatusIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ResetDraft replaces the draft with the default shape and clears derived state
func (s *DraftSession) ResetDraft(defaultCTAText string, now time.Time) {
	s.Draft = NewDraft(defaultCTAText)
	s.ManualUserIDsText = ""
	s.Estimate.Invalidate(now)
	s.UpdatedAt = now
}

// LoadDraft replaces the draft with d, re-deriving the manual id text
func (s *DraftSession) LoadDraft(d NotificationDraft, now time.Time) {
	s.Draft = d.StripIdentity()
	s.ManualUserIDsText = strings.Join(s.Draft.Audience.UserIDs, ", ")
	s.Estimate.Invalidate(now)
	if s.Draft.Audience.SelectionMethod == SelectionMethodManual {
		s.Estimate.SetImmediate(SelectionMethodManual, len(s.Draft.Audience.UserIDs), now)
	}
	s.UpdatedAt = now
}

// Apply replaces the draft with next. A change to anything the current selection method
// counts drops the estimate; manual audiences are re-counted immediately.
func (s *DraftSession) Apply(next NotificationDraft, now time.Time) {
	prev := s.Draft
	s.Draft = next
	s.UpdatedAt = now
	if !EstimateInputsChanged(prev, next) {
		return
	}
	if next.Audience.SelectionMethod == SelectionMethodManual {
		s.Estimate.SetImmediate(SelectionMethodManual, len(next.Audience.UserIDs), now)
		return
	}
	s.Estimate.Invalidate(now)
}

// SetManualUserIDs stores the raw id text and the ids parsed from it
func (s *DraftSession) SetManualUserIDs(text string, now time.Time) {
	ids := ParseUserIDList(text)
	s.ManualUserIDsText = text
	s.Apply(UpdateAudience(s.Draft, AudiencePatch{UserIDs: &ids}), now)
}

// EstimateInputsChanged reports whether the count of after's selection method may differ from before's
func EstimateInputsChanged(before, after NotificationDraft) bool {
	a, b := before.Audience, after.Audience
	if a.SelectionMethod != b.SelectionMethod {
		return true
	}
	switch b.SelectionMethod {
	case SelectionMethodQuery:
		return derefString(a.UserQuery) != derefString(b.UserQuery)
	case SelectionMethodManual:
		return !slices.Equal(a.UserIDs, b.UserIDs)
	case SelectionMethodFeed:
		return !slices.Equal(a.UserTypes, b.UserTypes) ||
			!slices.Equal(a.UserClassifications, b.UserClassifications) ||
			!sameFilters(before.Filters, after.Filters)
	}
	return false
}

func sameFilters(a, b *FilterSpec) bool {
	if a == nil {
		a = &FilterSpec{}
	}
	if b == nil {
		b = &FilterSpec{}
	}
	return equalPtr(a.Inventory, b.Inventory) &&
		equalPtr(a.Leads, b.Leads) &&
		slices.Equal(a.Zones, b.Zones)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
