package businessflow

import (
	"fmt"
	"strings"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/models"
)

// Preview fallbacks shown while the copy is still empty
const (
	PreviewTitlePlaceholder       = "Notification Title"
	PreviewDescriptionPlaceholder = "Notification description will appear here"
)

// BuildPreview projects a draft into what operators see before submitting it
func BuildPreview(d models.NotificationDraft) dto.PreviewResponse {
	out := dto.PreviewResponse{
		Title:           d.Title,
		Description:     d.Description,
		Type:            d.Type.String(),
		TypeLabel:       d.Type.Label(),
		StyleClass:      d.Type.StyleClass(),
		AudienceSummary: AudienceSummary(d.Audience, d.Filters),
		CanSubmit:       d.CanSubmit(),
	}
	if out.Title == "" {
		out.Title = PreviewTitlePlaceholder
	}
	if out.Description == "" {
		out.Description = PreviewDescriptionPlaceholder
	}
	if d.CTAText != "" {
		out.CTA = &dto.PreviewCTA{Text: d.CTAText, Link: d.CTALink}
	}
	return out
}

// AudienceSummary returns the human readable targeting lines in display order
func AudienceSummary(a models.AudienceSpec, f *models.FilterSpec) []string {
	method := a.SelectionMethod.String()
	if method == "" {
		method = "Not specified"
	}
	lines := []string{fmt.Sprintf("Selection method: %s", method)}

	if a.AllUserTypes() {
		lines = append(lines, "User types: All types")
	} else {
		lines = append(lines, "User types: "+joinValues(a.UserTypes))
	}

	if a.AllClassifications() {
		lines = append(lines, "User classifications: All classifications")
	} else {
		lines = append(lines, "User classifications: "+joinValues(a.UserClassifications))
	}

	if a.SelectionMethod == models.SelectionMethodQuery && a.HasUserQuery() {
		lines = append(lines, "Using custom query for user selection")
	}
	if a.SelectionMethod == models.SelectionMethodManual && a.HasUserIDs() {
		lines = append(lines, fmt.Sprintf("Manual selection: %d user IDs", len(a.UserIDs)))
	}
	if f.HasInventory() {
		lines = append(lines, "With inventory filters applied")
	}
	if f.HasLeads() {
		lines = append(lines, "With leads filters applied")
	}
	if !f.AllZones() {
		lines = append(lines, "Targeted zones: "+strings.Join(f.Zones, ", "))
	}
	return lines
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
