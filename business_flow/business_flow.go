// Package businessflow contains the business logic for the application.
package businessflow

import (
	"strings"
	"time"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/models"
)

// ClientMetadata holds all client-related information for logging and session tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToNotificationDraftDTO converts a draft model to its wire shape
func ToNotificationDraftDTO(d models.NotificationDraft) dto.NotificationDraftDTO {
	d = d.Clone()
	return dto.NotificationDraftDTO{
		Title:       d.Title,
		Description: d.Description,
		CTAText:     d.CTAText,
		CTALink:     d.CTALink,
		Type:        d.Type.String(),
		Audience:    ToAudienceDTO(d.Audience),
		Filters:     ToFiltersDTO(d.Filters),
		ID:          d.ID,
		CreatedAt:   d.CreatedAt,
		ExpiresAt:   d.ExpiresAt,
		IsActive:    d.IsActive,
	}
}

// ToAudienceDTO converts an audience model to its wire shape
func ToAudienceDTO(a models.AudienceSpec) dto.AudienceDTO {
	out := dto.AudienceDTO{
		SelectionMethod:     a.SelectionMethod.String(),
		UserTypes:           make([]string, 0, len(a.UserTypes)),
		UserClassifications: make([]string, 0, len(a.UserClassifications)),
		UserIDs:             a.UserIDs,
		UserQuery:           a.UserQuery,
	}
	for _, t := range a.UserTypes {
		out.UserTypes = append(out.UserTypes, string(t))
	}
	for _, c := range a.UserClassifications {
		out.UserClassifications = append(out.UserClassifications, string(c))
	}
	return out
}

// ToFiltersDTO converts filters to their wire shape
func ToFiltersDTO(f *models.FilterSpec) *dto.FiltersDTO {
	if f == nil {
		return nil
	}
	out := &dto.FiltersDTO{Zones: f.Zones}
	if f.Inventory != nil {
		out.Inventory = &dto.InventoryFilterDTO{Active: f.Inventory.Active, Quantity: f.Inventory.Quantity}
	}
	if f.Leads != nil {
		out.Leads = &dto.LeadsFilterDTO{Quantity: f.Leads.Quantity, AgeInDays: f.Leads.AgeInDays}
	}
	return out
}

// FromNotificationDraftDTO converts and validates a submitted draft. Identity fields are ignored.
func FromNotificationDraftDTO(in dto.NotificationDraftDTO) (models.NotificationDraft, error) {
	notificationType := models.NotificationType(in.Type)
	if !notificationType.Valid() {
		return models.NotificationDraft{}, ErrInvalidNotificationType
	}

	audience, err := FromAudienceDTO(in.Audience)
	if err != nil {
		return models.NotificationDraft{}, err
	}

	filters, err := FromFiltersDTO(in.Filters)
	if err != nil {
		return models.NotificationDraft{}, err
	}

	return models.NotificationDraft{
		Title:       in.Title,
		Description: in.Description,
		CTAText:     in.CTAText,
		CTALink:     in.CTALink,
		Type:        notificationType,
		Audience:    audience,
		Filters:     filters,
	}, nil
}

// FromAudienceDTO converts and validates an audience. Sets are deduplicated and user ids
// normalized the way the draft text field is.
func FromAudienceDTO(in dto.AudienceDTO) (models.AudienceSpec, error) {
	ids := models.ParseUserIDList(strings.Join(in.UserIDs, ","))
	patch, err := toAudiencePatch(dto.UpdateAudienceRequest{
		SelectionMethod:     &in.SelectionMethod,
		UserTypes:           &in.UserTypes,
		UserClassifications: &in.UserClassifications,
		UserIDs:             &ids,
		UserQuery:           in.UserQuery,
	})
	if err != nil {
		return models.AudienceSpec{}, err
	}
	if patch.UserQuery == nil {
		empty := ""
		patch.UserQuery = &empty
	}

	d := models.UpdateAudience(models.NewDraft(""), patch)
	return d.Audience, nil
}

// FromFiltersDTO converts and validates the secondary filters
func FromFiltersDTO(in *dto.FiltersDTO) (*models.FilterSpec, error) {
	if in == nil {
		return nil, nil
	}

	out := &models.FilterSpec{}
	if in.Inventory != nil {
		if err := validateQuantity(in.Inventory.Quantity); err != nil {
			return nil, err
		}
		out.Inventory = &models.InventoryFilter{Active: in.Inventory.Active, Quantity: in.Inventory.Quantity}
	}
	if in.Leads != nil {
		if err := validateQuantity(in.Leads.Quantity); err != nil {
			return nil, err
		}
		if err := validateAgeInDays(in.Leads.AgeInDays); err != nil {
			return nil, err
		}
		out.Leads = &models.LeadsFilter{Quantity: in.Leads.Quantity, AgeInDays: in.Leads.AgeInDays}
	}
	if !models.Unrestricted(len(in.Zones)) {
		for _, z := range in.Zones {
			if !models.IsKnownZone(z) {
				return nil, ErrUnknownZone
			}
		}
		out.Zones = append([]string(nil), in.Zones...)
	}
	return out, nil
}

// toAudiencePatch validates the present keys of an audience update
func toAudiencePatch(req dto.UpdateAudienceRequest) (models.AudiencePatch, error) {
	var patch models.AudiencePatch

	if req.SelectionMethod != nil {
		method := models.SelectionMethod(*req.SelectionMethod)
		if !method.Valid() {
			return patch, ErrInvalidSelectionMethod
		}
		patch.SelectionMethod = &method
	}
	if req.UserTypes != nil {
		types := make([]models.UserType, 0, len(*req.UserTypes))
		for _, raw := range *req.UserTypes {
			t := models.UserType(raw)
			if !t.Valid() {
				return patch, ErrInvalidUserType
			}
			types = append(types, t)
		}
		patch.UserTypes = &types
	}
	if req.UserClassifications != nil {
		classes := make([]models.UserClassification, 0, len(*req.UserClassifications))
		for _, raw := range *req.UserClassifications {
			c := models.UserClassification(raw)
			if !c.Valid() {
				return patch, ErrInvalidUserClassification
			}
			classes = append(classes, c)
		}
		patch.UserClassifications = &classes
	}
	if req.UserIDs != nil {
		ids := append([]string(nil), *req.UserIDs...)
		patch.UserIDs = &ids
	}
	if req.UserQuery != nil {
		q := *req.UserQuery
		patch.UserQuery = &q
	}
	return patch, nil
}

func validateQuantity(q int) error {
	if q < models.MinFilterQuantity || q > models.MaxFilterQuantity {
		return ErrInvalidFilterQuantity
	}
	return nil
}

func validateAgeInDays(days int) error {
	if days < models.MinLeadsAgeInDays || days > models.MaxLeadsAgeInDays {
		return ErrInvalidFilterAgeInDays
	}
	return nil
}

// ToNotificationItem converts a committed notification for history views
func ToNotificationItem(n *models.Notification, now time.Time) dto.NotificationItem {
	return dto.NotificationItem{
		NotificationDraftDTO: ToNotificationDraftDTO(n.AsDraft()),
		TypeLabel:            n.Spec.Type.Label(),
		AudienceLabel:        n.Spec.Audience.SelectionMethod.Label(),
		Status:               string(n.Status(now)),
	}
}

// ToEstimateDTO converts the estimate state of a session
func ToEstimateDTO(e models.AudienceEstimate) dto.EstimateDTO {
	out := dto.EstimateDTO{
		Status:    string(e.Status),
		Token:     e.Token,
		Method:    e.Method.String(),
		UpdatedAt: e.UpdatedAt,
	}
	if e.Count != nil {
		count := *e.Count
		out.Count = &count
	}
	return out
}

// ToDraftResponse converts a draft session for responses
func ToDraftResponse(s *models.DraftSession) dto.DraftResponse {
	return dto.DraftResponse{
		SessionID:         s.ID,
		Draft:             ToNotificationDraftDTO(s.Draft),
		ManualUserIDsText: s.ManualUserIDsText,
		Estimate:          ToEstimateDTO(s.Estimate),
		CanSubmit:         s.Draft.CanSubmit(),
		UpdatedAt:         s.UpdatedAt,
	}
}
