// Package analysis implements the per-topic domain analysis agents that derive
// transfer patterns, risk factors, and recommendations from an assessment record.
//
// The transfers agent is a four-stage pipeline of pure functions: extraction,
// pattern detection, risk aggregation, and recommendation derivation. Every stage
// defaults aggressively for missing data; the pipeline never fails on a sparse or
// malformed record.
package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
)

// TransfersAgent analyzes the transfers assessment area.
type TransfersAgent struct {
	logger *logrus.Logger
}

// NewTransfersAgent creates a transfers analysis agent.
func NewTransfersAgent(logger *logrus.Logger) *TransfersAgent {
	return &TransfersAgent{logger: logger}
}

// Analyze runs the full transfers pipeline over the record.
//
// The computation is pure: the record is read-only, no state is carried between
// calls, and an unchanged record always produces a structurally identical result.
func (a *TransfersAgent) Analyze(rec domain.AssessmentRecord) domain.AnalysisResult {
	view := extractTransfers(rec)

	general := detectGeneralPatterns(view)
	locations := buildLocationAnalyses(view)
	risks := aggregateRisks(view)
	required := requiredEquipment(view, general, locations)
	recommendations := deriveRecommendations(view, general, locations, risks, required)

	result := domain.AnalysisResult{
		TransferStatus: domain.TransferStatus{
			Locations:         locations,
			GeneralPatterns:   general,
			RequiredEquipment: required,
		},
		RiskFactors:     risks,
		Recommendations: recommendations,
	}

	a.logger.WithFields(logrus.Fields{
		"general_patterns": len(general),
		"risk_factors":     len(risks),
		"recommendations":  len(recommendations),
	}).Debug("Completed transfers analysis")

	return result
}
