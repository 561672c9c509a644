package validation

import (
	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/record"
)

// TransfersTopic returns the validation topic for the transfers assessment area.
// Required paths and rules are fixed here at definition time.
func TransfersTopic() Topic {
	return Topic{
		Name: "transfers",
		RequiredFields: []string{
			"demographics.firstName",
			"demographics.lastName",
			"functionalAssessment.transfers",
		},
		Rules: []Rule{
			{
				Check: func(rec domain.AssessmentRecord) bool {
					transfers := record.GetMap(rec, "functionalAssessment.transfers")
					return len(transfers) > 0
				},
				Message: "Transfer assessment contains no entries",
			},
			{
				Check: func(rec domain.AssessmentRecord) bool {
					transfers := record.GetMap(rec, "functionalAssessment.transfers")
					for key := range transfers {
						if level, ok := assistanceLevelOf(transfers[key]); ok && !level.IsValid() {
							return false
						}
					}
					return true
				},
				Message: "One or more assistance levels are not recognized values",
			},
		},
	}
}

// DemographicsTopic returns the validation topic for the demographics area used by
// the narrative generator.
func DemographicsTopic() Topic {
	return Topic{
		Name: "demographics",
		RequiredFields: []string{
			"demographics.firstName",
			"demographics.lastName",
			"demographics.dateOfBirth",
		},
		Rules: []Rule{
			{
				Check: func(rec domain.AssessmentRecord) bool {
					return record.GetString(rec, "demographics.firstName", "") != "" &&
						record.GetString(rec, "demographics.lastName", "") != ""
				},
				Message: "Client name must not be blank",
			},
		},
	}
}

// assistanceLevelOf extracts the assistance level from either shape a transfer
// sub-record may take: a bare string, or a map with an assistanceLevel key.
// The second return value is false when no level string is present at all.
func assistanceLevelOf(v any) (domain.AssistanceLevel, bool) {
	switch value := v.(type) {
	case string:
		if value == "" {
			return "", false
		}
		return domain.AssistanceLevel(value), true
	case map[string]any:
		s, ok := value["assistanceLevel"].(string)
		if !ok || s == "" {
			return "", false
		}
		return domain.AssistanceLevel(s), true
	default:
		return "", false
	}
}
