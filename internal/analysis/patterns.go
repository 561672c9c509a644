package analysis

import (
	"github.com/ot-assessment-server/internal/domain"
)

// detectPattern turns one working entry into a transfer pattern, or nil when the
// entry carries no assistance level or a level outside the clinical enumeration.
// Unrecognized level strings are silently treated as absent here; flagging them is
// the validation engine's concern, not the analysis pipeline's.
func detectPattern(entry transferEntry) *domain.TransferPattern {
	if entry.RawLevel == "" {
		return nil
	}
	level := domain.AssistanceLevel(entry.RawLevel)
	if !level.IsValid() {
		return nil
	}

	return &domain.TransferPattern{
		Type:           level,
		Context:        entry.Context,
		Modifications:  entry.Modifications,
		Equipment:      entry.Equipment,
		SafetyConcerns: entry.SafetyConcerns,
	}
}

// detectGeneralPatterns detects patterns for the two canonical transfer tasks, in
// their fixed order.
func detectGeneralPatterns(view transfersView) []domain.TransferPattern {
	patterns := make([]domain.TransferPattern, 0, len(view.General))
	for _, entry := range view.General {
		if p := detectPattern(entry); p != nil {
			patterns = append(patterns, *p)
		}
	}
	return patterns
}

// buildLocationAnalyses produces one LocationAnalysis per fixed location,
// independently of the general patterns. A location's risks merge its detected
// safety concerns with the environmental hazards tagged to it, each hazard
// re-labelled with the location.
func buildLocationAnalyses(view transfersView) []domain.LocationAnalysis {
	analyses := make([]domain.LocationAnalysis, 0, len(domain.TransferLocations))

	for i, location := range domain.TransferLocations {
		entry := view.Locations[i]

		patterns := []domain.TransferPattern{}
		risks := []string{}

		if p := detectPattern(entry); p != nil {
			patterns = append(patterns, *p)
			risks = append(risks, p.SafetyConcerns...)
		}

		for _, hazard := range view.Hazards[location] {
			risks = append(risks, string(location)+": "+hazard)
		}

		analyses = append(analyses, domain.LocationAnalysis{
			Location: string(location),
			Patterns: patterns,
			Risks:    risks,
		})
	}

	return analyses
}
