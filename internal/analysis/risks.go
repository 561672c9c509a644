package analysis

import (
	"fmt"
	"strings"

	"github.com/ot-assessment-server/internal/domain"
)

// symptomKeywords are the body-region terms that mark a physical symptom as
// relevant to transfer safety.
var symptomKeywords = []string{"hip", "knee", "back", "shoulder"}

// aggregateRisks builds the flat risk-factor list in three fixed passes. The pass
// order is part of the contract: symptom risks, then high-assistance risks, then
// environmental hazards.
func aggregateRisks(view transfersView) []string {
	risks := []string{}

	// Pass 1: physical symptoms in transfer-relevant body regions.
	for _, symptom := range view.PhysicalSymptoms {
		if !containsAnyKeyword(symptom.Location) {
			continue
		}
		risks = append(risks, fmt.Sprintf("%s %s %s impacts transfer safety",
			symptom.Location,
			strings.ToLower(symptom.Severity),
			strings.ToLower(symptom.PainType)))
	}

	// Pass 2: high assistance needs, scanned over the raw sub-records. This reads
	// RawLevel directly rather than the detected patterns, so a level string that
	// pattern detection rejected can still be compared here. Preserved as observed
	// intake behavior; see the transfers notes in DESIGN.md before changing.
	for _, entry := range append(append([]transferEntry{}, view.General...), view.Locations...) {
		if domain.AssistanceLevel(entry.RawLevel).IsHighAssistance() {
			risks = append(risks, fmt.Sprintf("High assistance needs for %s transfers", entry.Key))
		}
	}

	// Pass 3: environmental hazards, labelled per location in fixed location order.
	for _, location := range domain.TransferLocations {
		for _, hazard := range view.Hazards[location] {
			risks = append(risks, string(location)+": "+hazard)
		}
	}

	return risks
}

func containsAnyKeyword(location string) bool {
	lower := strings.ToLower(location)
	for _, keyword := range symptomKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
