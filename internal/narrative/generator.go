package narrative

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/record"
)

// birthDateLayout is the date format assessment records use for dateOfBirth.
const birthDateLayout = "2006-01-02"

// demographicsView is the sub-view of the record the generator reads, extracted
// once per call.
type demographicsView struct {
	FirstName       string
	LastName        string
	DateOfBirth     string
	Occupation      string
	PrimaryConcerns []string
	Goals           []string
}

// Generator produces a short narrative for the demographics topic without any
// LLM involvement.
type Generator struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewGenerator creates a demographics narrative generator.
func NewGenerator(logger *logrus.Logger) *Generator {
	return &Generator{logger: logger, now: time.Now}
}

// GenerateNarrative composes overview, detailed analysis, and implications
// paragraphs. Blank paragraphs are filtered; the rest are joined with a blank
// line. A record with no usable demographics yields an empty string.
func (g *Generator) GenerateNarrative(rec domain.AssessmentRecord) string {
	view := extractDemographics(rec)

	parts := []string{}
	for _, part := range []string{g.overview(view), g.detailedAnalysis(view), g.implications(view)} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	g.logger.WithFields(logrus.Fields{
		"client":     strings.TrimSpace(view.FirstName + " " + view.LastName),
		"paragraphs": len(parts),
	}).Debug("Generated demographics narrative")

	return strings.Join(parts, "\n\n")
}

func extractDemographics(rec domain.AssessmentRecord) demographicsView {
	return demographicsView{
		FirstName:       record.GetString(rec, "demographics.firstName", ""),
		LastName:        record.GetString(rec, "demographics.lastName", ""),
		DateOfBirth:     record.GetString(rec, "demographics.dateOfBirth", ""),
		Occupation:      record.GetString(rec, "demographics.occupation", ""),
		PrimaryConcerns: record.GetStringSlice(rec, "demographics.primaryConcerns"),
		Goals:           record.GetStringSlice(rec, "demographics.goals"),
	}
}

func (g *Generator) overview(view demographicsView) string {
	name := strings.TrimSpace(view.FirstName + " " + view.LastName)
	if name == "" {
		return ""
	}

	sentence := name + " is a client referred for occupational therapy assessment."
	if birth, err := time.Parse(birthDateLayout, view.DateOfBirth); err == nil {
		sentence = fmt.Sprintf("%s is a %d-year-old client referred for occupational therapy assessment.",
			name, ageOn(birth, g.now()))
	}
	if view.Occupation != "" {
		sentence += " Stated occupation: " + view.Occupation + "."
	}
	return sentence
}

func (g *Generator) detailedAnalysis(view demographicsView) string {
	if len(view.PrimaryConcerns) == 0 {
		return ""
	}
	return "Primary concerns reported at intake include " +
		joinWithConjunction(view.PrimaryConcerns, "and") + "."
}

func (g *Generator) implications(view demographicsView) string {
	if len(view.Goals) == 0 {
		return ""
	}
	return "Assessment findings will inform an intervention plan directed at " +
		joinWithConjunction(view.Goals, "and") + "."
}

// joinWithConjunction joins items into prose: empty list yields "", one item is
// returned as is, two items are joined by the conjunction, three or more use an
// Oxford-style list.
func joinWithConjunction(items []string, conjunction string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conjunction + " " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", " + conjunction + " " + items[len(items)-1]
	}
}

// ageOn returns whole years from birth to now using last-birthday arithmetic: the
// age decrements by one when now's month/day falls before the birth month/day.
func ageOn(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}
