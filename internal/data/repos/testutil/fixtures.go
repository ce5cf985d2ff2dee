package testutil

import (
	"github.com/yungbote/safetywatch-backend/internal/domain"
)

// NewObservation returns an unsaved open observation with distinguishable field values.
func NewObservation(name, date string) *domain.Observation {
	return &domain.Observation{
		Name:        name,
		Department:  "Maintenance",
		Description: "Oil leak near press " + name,
		Fix:         "",
		Status:      "Open",
		Date:        date,
	}
}
