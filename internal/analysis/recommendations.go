package analysis

import (
	"strings"

	"github.com/ot-assessment-server/internal/domain"
)

// requiredEquipment computes the deduplicated equipment set the client needs for
// safe transfers. It unions three sources with first-seen preference: equipment
// referenced by detected patterns, equipment named anywhere in the raw transfer
// sub-records, and currently-owned items that a non-independent pattern still
// depends on.
func requiredEquipment(view transfersView, general []domain.TransferPattern, locations []domain.LocationAnalysis) []string {
	seen := map[string]bool{}
	required := []string{}
	add := func(item string) {
		if item == "" || seen[item] {
			return
		}
		seen[item] = true
		required = append(required, item)
	}

	patterns := allPatterns(general, locations)
	for _, pattern := range patterns {
		for _, item := range pattern.Equipment {
			add(item)
		}
	}
	for _, entry := range append(append([]transferEntry{}, view.General...), view.Locations...) {
		for _, item := range entry.Equipment {
			add(item)
		}
	}
	for _, owned := range view.CurrentEquipment {
		for _, pattern := range patterns {
			if pattern.Type == domain.Independent {
				continue
			}
			for _, item := range pattern.Equipment {
				if item == owned {
					add(owned)
				}
			}
		}
	}

	return required
}

// deriveRecommendations runs four independent passes and concatenates their
// output in pass order.
func deriveRecommendations(view transfersView, general []domain.TransferPattern, locations []domain.LocationAnalysis, risks []string, required []string) []string {
	recommendations := []string{}

	// Pass 1: equipment the client needs but does not yet own.
	owned := map[string]bool{}
	for _, item := range view.CurrentEquipment {
		owned[item] = true
	}
	for _, item := range required {
		if !owned[item] {
			recommendations = append(recommendations, "Obtain "+item+" for safe transfers")
		}
	}

	// Pass 2: any pattern beyond modified independence warrants PT involvement.
	for _, pattern := range allPatterns(general, locations) {
		if pattern.Type.RequiresAssistance() {
			recommendations = append(recommendations, "Transfer training with physical therapy recommended")
			break
		}
	}

	// Pass 3: hazard-derived risks each get an explicit remediation line.
	for _, risk := range risks {
		if strings.Contains(strings.ToLower(risk), "hazard") {
			recommendations = append(recommendations, "Address "+risk)
		}
	}

	// Pass 4: caregiver training, at most once no matter how many locations
	// need high assistance.
	for _, entry := range append(append([]transferEntry{}, view.General...), view.Locations...) {
		if domain.AssistanceLevel(entry.RawLevel).IsHighAssistance() {
			recommendations = append(recommendations, "Caregiver training for safe transfer techniques recommended")
			break
		}
	}

	return recommendations
}

func allPatterns(general []domain.TransferPattern, locations []domain.LocationAnalysis) []domain.TransferPattern {
	patterns := append([]domain.TransferPattern{}, general...)
	for _, location := range locations {
		patterns = append(patterns, location.Patterns...)
	}
	return patterns
}
