package narrative

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ot-assessment-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestJoinWithConjunction(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"empty", []string{}, ""},
		{"single", []string{"walker"}, "walker"},
		{"pair", []string{"walker", "grab bar"}, "walker and grab bar"},
		{"oxford", []string{"walker", "grab bar", "shower chair"}, "walker, grab bar, and shower chair"},
		{"four", []string{"a", "b", "c", "d"}, "a, b, c, and d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinWithConjunction(tt.items, "and"))
		})
	}
}

func TestAgeOn(t *testing.T) {
	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), 33},
		{"on birthday", time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), 34},
		{"after birthday", time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), 34},
		{"earlier month", time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ageOn(birth, tt.now))
		})
	}
}

func TestGenerateNarrative(t *testing.T) {
	gen := NewGenerator(testLogger())
	gen.now = func() time.Time {
		return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	}

	rec := domain.AssessmentRecord{
		"demographics": map[string]any{
			"firstName":       "Sam",
			"lastName":        "Carter",
			"dateOfBirth":     "1990-06-15",
			"occupation":      "teacher",
			"primaryConcerns": []any{"hip pain", "fatigue"},
			"goals":           []any{"independent transfers", "return to work", "safe bathing"},
		},
	}

	out := gen.GenerateNarrative(rec)

	paragraphs := strings.Split(out, "\n\n")
	require.Len(t, paragraphs, 3)
	assert.Equal(t, "Sam Carter is a 34-year-old client referred for occupational therapy assessment. Stated occupation: teacher.", paragraphs[0])
	assert.Equal(t, "Primary concerns reported at intake include hip pain and fatigue.", paragraphs[1])
	assert.Equal(t, "Assessment findings will inform an intervention plan directed at independent transfers, return to work, and safe bathing.", paragraphs[2])
}

func TestGenerateNarrative_BlankSectionsFiltered(t *testing.T) {
	gen := NewGenerator(testLogger())

	rec := domain.AssessmentRecord{
		"demographics": map[string]any{
			"firstName": "Sam",
			"lastName":  "Carter",
		},
	}

	out := gen.GenerateNarrative(rec)
	assert.Equal(t, "Sam Carter is a client referred for occupational therapy assessment.", out)

	assert.Equal(t, "", gen.GenerateNarrative(domain.AssessmentRecord{}))
}

func analysisFixture() domain.AnalysisResult {
	return domain.AnalysisResult{
		TransferStatus: domain.TransferStatus{
			Locations: []domain.LocationAnalysis{
				{
					Location: "bed",
					Patterns: []domain.TransferPattern{
						{
							Type:           domain.ModerateAssist,
							Context:        "bed transfers",
							Modifications:  []string{"slow pace"},
							Equipment:      []string{"bed rail"},
							SafetyConcerns: []string{"dizziness on standing"},
						},
					},
					Risks: []string{"bed: cluttered floor hazard"},
				},
				{Location: "chair", Patterns: []domain.TransferPattern{}, Risks: []string{}},
				{
					Location: "toilet",
					Patterns: []domain.TransferPattern{
						{Type: domain.Independent, Context: "toilet transfers",
							Modifications: []string{}, Equipment: []string{}, SafetyConcerns: []string{}},
					},
					Risks: []string{},
				},
				{Location: "shower", Patterns: []domain.TransferPattern{}, Risks: []string{}},
			},
			GeneralPatterns:   []domain.TransferPattern{},
			RequiredEquipment: []string{"bed rail", "grab bar"},
		},
		RiskFactors:     []string{"High assistance needs for bed transfers"},
		Recommendations: []string{"Obtain grab bar for safe transfers"},
	}
}

func TestFormat_Brief(t *testing.T) {
	f := NewFormatter(testLogger())

	out := f.Format(analysisFixture(), domain.DetailBrief)

	assert.True(t, strings.HasPrefix(out, "## Transfer Assessment Summary"))
	assert.Contains(t, out, "- bed: Moderate assistance")
	assert.Contains(t, out, "- chair: Not assessed")
	assert.Contains(t, out, "- toilet: Independent")
	assert.Contains(t, out, "- shower: Not assessed")
	assert.Contains(t, out, "Equipment needed: bed rail and grab bar")
	assert.Contains(t, out, "- High assistance needs for bed transfers")
	assert.NotContains(t, out, "###", "brief output has no sub-headings")
}

func TestFormat_BriefSeverityReduction(t *testing.T) {
	f := NewFormatter(testLogger())
	result := domain.AnalysisResult{
		TransferStatus: domain.TransferStatus{
			Locations: []domain.LocationAnalysis{
				{
					Location: "bed",
					Patterns: []domain.TransferPattern{
						{Type: domain.MinimalAssist},
						{Type: domain.MaximumAssist},
						{Type: domain.ModerateAssist},
					},
				},
			},
		},
	}

	out := f.Format(result, domain.DetailBrief)
	assert.Contains(t, out, "- bed: Maximum assistance")
}

func TestFormat_Standard(t *testing.T) {
	f := NewFormatter(testLogger())

	out := f.Format(analysisFixture(), domain.DetailStandard)

	assert.True(t, strings.HasPrefix(out, "## Transfer Assessment"))
	assert.Contains(t, out, "### Bed Transfers")
	assert.Contains(t, out, "- Moderate assistance (modifications: slow pace; equipment: bed rail)")
	assert.Contains(t, out, "### Chair Transfers\n- Not assessed")
	assert.Contains(t, out, "### Equipment\n- bed rail\n- grab bar")
	assert.Contains(t, out, "### Risk Factors\n- High assistance needs for bed transfers")
	assert.Contains(t, out, "### Recommendations\n- Obtain grab bar for safe transfers")
	assert.NotContains(t, out, "### Notes")
	assert.NotContains(t, out, "Safety concerns", "standard omits safety concerns")
}

func TestFormat_StandardPlaceholders(t *testing.T) {
	f := NewFormatter(testLogger())

	out := f.Format(domain.AnalysisResult{}, domain.DetailStandard)

	assert.Contains(t, out, "### Equipment\n- No specialized equipment required")
	assert.Contains(t, out, "### Risk Factors\n- No significant risk factors identified")
	assert.Contains(t, out, "### Recommendations\n- No specific recommendations at this time")
}

func TestFormat_Detailed(t *testing.T) {
	f := NewFormatter(testLogger())

	out := f.Format(analysisFixture(), domain.DetailDetailed)

	assert.Contains(t, out, "    - Context: bed transfers")
	assert.Contains(t, out, "    - Modifications: slow pace")
	assert.Contains(t, out, "    - Equipment: bed rail")
	assert.Contains(t, out, "    - Safety concerns: dizziness on standing")
	assert.Contains(t, out, "### Notes")
	for _, note := range detailNotes {
		assert.Contains(t, out, "- "+note)
	}
}

func TestFormat_DefaultsToStandard(t *testing.T) {
	f := NewFormatter(testLogger())
	fixture := analysisFixture()

	standard := f.Format(fixture, domain.DetailStandard)

	assert.Equal(t, standard, f.Format(fixture, ""))
	assert.Equal(t, standard, f.Format(fixture, domain.DetailLevel("verbose")))
}
