// Package narrative renders analysis results and assessment records as
// reader-facing prose. The formatter turns an AnalysisResult into Markdown-shaped
// text at a selectable detail level; the generator produces a short non-LLM
// narrative for the demographics topic.
package narrative

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
)

// detailNotes is the fixed methodology caveat block appended to detailed output.
var detailNotes = []string{
	"Findings reflect performance observed at the time of assessment and may vary with fatigue, pain, and environment",
	"Assistance levels follow standard occupational therapy terminology",
	"Equipment recommendations assume correct fitting and training in use",
	"Reassessment is recommended following any significant change in function or living situation",
}

const (
	noEquipmentLine       = "No specialized equipment required"
	noRisksLine           = "No significant risk factors identified"
	noRecommendationsLine = "No specific recommendations at this time"
	notAssessedLine       = "Not assessed"
)

// Formatter renders an AnalysisResult as plain multi-line text.
type Formatter struct {
	logger *logrus.Logger
}

// NewFormatter creates a narrative formatter.
func NewFormatter(logger *logrus.Logger) *Formatter {
	return &Formatter{logger: logger}
}

// Format renders the result at the given detail level. An unrecognized or empty
// level falls back to standard.
func (f *Formatter) Format(result domain.AnalysisResult, level domain.DetailLevel) string {
	if !level.IsValid() {
		level = domain.DetailStandard
	}

	f.logger.WithFields(logrus.Fields{
		"detail_level": level.String(),
		"locations":    len(result.TransferStatus.Locations),
	}).Debug("Formatting analysis result")

	switch level {
	case domain.DetailBrief:
		return f.formatBrief(result)
	case domain.DetailDetailed:
		return f.formatFull(result, true)
	default:
		return f.formatFull(result, false)
	}
}

// formatBrief reduces each location to its worst-case assistance level, then adds
// one equipment summary line and one bullet per risk factor.
func (f *Formatter) formatBrief(result domain.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("## Transfer Assessment Summary\n\n")

	for _, location := range result.TransferStatus.Locations {
		levels := make([]domain.AssistanceLevel, 0, len(location.Patterns))
		for _, pattern := range location.Patterns {
			levels = append(levels, pattern.Type)
		}
		summary := notAssessedLine
		if len(levels) > 0 {
			summary = domain.MostSevere(levels).Summary()
		}
		b.WriteString("- " + location.Location + ": " + summary + "\n")
	}

	b.WriteString("\nEquipment needed: ")
	if len(result.TransferStatus.RequiredEquipment) > 0 {
		b.WriteString(joinWithConjunction(result.TransferStatus.RequiredEquipment, "and"))
	} else {
		b.WriteString("none")
	}
	b.WriteString("\n")

	if len(result.RiskFactors) > 0 {
		b.WriteString("\nRisk factors:\n")
		for _, risk := range result.RiskFactors {
			b.WriteString("- " + risk + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatFull renders the standard structure; detailed additionally spells out every
// optional pattern attribute and closes with the fixed Notes block.
func (f *Formatter) formatFull(result domain.AnalysisResult, detailed bool) string {
	var b strings.Builder
	b.WriteString("## Transfer Assessment\n")

	for _, location := range result.TransferStatus.Locations {
		b.WriteString("\n### " + capitalize(location.Location) + " Transfers\n")
		if len(location.Patterns) == 0 {
			b.WriteString("- " + notAssessedLine + "\n")
			continue
		}
		for _, pattern := range location.Patterns {
			writePattern(&b, pattern, detailed)
		}
	}

	writeSection(&b, "Equipment", result.TransferStatus.RequiredEquipment, noEquipmentLine)
	writeSection(&b, "Risk Factors", result.RiskFactors, noRisksLine)
	writeSection(&b, "Recommendations", result.Recommendations, noRecommendationsLine)

	if detailed {
		writeSection(&b, "Notes", detailNotes, "")
	}

	return strings.TrimRight(b.String(), "\n")
}

func writePattern(b *strings.Builder, pattern domain.TransferPattern, detailed bool) {
	b.WriteString("- " + pattern.Type.Summary())
	if !detailed {
		var extras []string
		if len(pattern.Modifications) > 0 {
			extras = append(extras, "modifications: "+strings.Join(pattern.Modifications, ", "))
		}
		if len(pattern.Equipment) > 0 {
			extras = append(extras, "equipment: "+strings.Join(pattern.Equipment, ", "))
		}
		if len(extras) > 0 {
			b.WriteString(" (" + strings.Join(extras, "; ") + ")")
		}
		b.WriteString("\n")
		return
	}

	b.WriteString("\n")
	if pattern.Context != "" {
		b.WriteString("    - Context: " + pattern.Context + "\n")
	}
	if len(pattern.Modifications) > 0 {
		b.WriteString("    - Modifications: " + strings.Join(pattern.Modifications, ", ") + "\n")
	}
	if len(pattern.Equipment) > 0 {
		b.WriteString("    - Equipment: " + strings.Join(pattern.Equipment, ", ") + "\n")
	}
	if len(pattern.SafetyConcerns) > 0 {
		b.WriteString("    - Safety concerns: " + strings.Join(pattern.SafetyConcerns, ", ") + "\n")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeSection(b *strings.Builder, heading string, items []string, placeholder string) {
	b.WriteString("\n### " + heading + "\n")
	if len(items) == 0 {
		b.WriteString("- " + placeholder + "\n")
		return
	}
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}
