package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/pkg/llm"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, "Hello Sam", substitute("Hello {{name}}", map[string]string{"name": "Sam"}))
	assert.Equal(t, "Hello {{name}}", substitute("Hello {{name}}", map[string]string{}),
		"absent keys leave the placeholder verbatim")
	assert.Equal(t, "Sam and Sam", substitute("{{name}} and {{name}}", map[string]string{"name": "Sam"}))
}

func TestGenerateReport_SectionsRenderInOrder(t *testing.T) {
	registry := NewRegistry(testLogger())
	registry.templates["ordered"] = map[string]domain.ReportSection{
		"third":  {Order: 3, Template: "THIRD"},
		"first":  {Order: 1, Template: "FIRST"},
		"second": {Order: 2, Template: "SECOND"},
	}

	out, err := registry.GenerateReport("ordered", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "FIRST\n\nSECOND\n\nTHIRD", out)
}

func TestGenerateReport_UnknownTemplate(t *testing.T) {
	registry := NewRegistry(testLogger())

	_, err := registry.GenerateReport("missing", nil, nil)
	require.Error(t, err)

	var notFound *domain.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Name)
}

func TestGenerateReport_StaticThenDynamicSubstitution(t *testing.T) {
	registry := NewRegistry(testLogger())
	registry.templates["t"] = map[string]domain.ReportSection{
		"body": {Order: 1, Template: "{{static}} / {{dynamic}} / {{neither}}"},
	}

	out, err := registry.GenerateReport("t",
		map[string]string{"static": "S"},
		map[string]map[string]string{"body": {"dynamic": "D"}})
	require.NoError(t, err)
	assert.Equal(t, "S / D / {{neither}}", out)
}

func TestAddSection(t *testing.T) {
	registry := NewRegistry(testLogger())

	err := registry.AddSection("missing", "s", domain.ReportSection{Order: 1})
	var notFound *domain.TemplateNotFoundError
	require.ErrorAs(t, err, &notFound)

	require.NoError(t, registry.AddSection(DefaultTemplateName, "appendix",
		domain.ReportSection{Order: 9, Template: "## Appendix\n\n{{appendixBody}}"}))

	out, err := registry.GenerateReport(DefaultTemplateName, nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "## Appendix\n\n{{appendixBody}}"))
}

func TestModifySection(t *testing.T) {
	registry := NewRegistry(testLogger())

	err := registry.ModifySection(DefaultTemplateName, "nope", domain.ReportSection{Order: 1})
	var sectionErr *domain.SectionNotFoundError
	require.ErrorAs(t, err, &sectionErr)
	assert.Equal(t, "nope", sectionErr.Section)

	require.NoError(t, registry.ModifySection(DefaultTemplateName, "signature",
		domain.ReportSection{Order: 8, Template: "Signed: {{assessorName}}"}))

	out, err := registry.GenerateReport(DefaultTemplateName, map[string]string{"assessorName": "J. Reyes"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed: J. Reyes")
}

// scriptedCompleter records prompts and fails after a configurable call count.
type scriptedCompleter struct {
	prompts  []string
	failFrom int
}

func (s *scriptedCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	s.prompts = append(s.prompts, req.Prompt)
	if s.failFrom > 0 && len(s.prompts) >= s.failFrom {
		return nil, errors.New("completion endpoint unavailable")
	}
	return &llm.CompletionResult{Text: fmt.Sprintf("narrative %d", len(s.prompts))}, nil
}

type memoryStorage struct {
	writes map[string]string
	err    error
}

func (m *memoryStorage) Write(path string, content string) error {
	if m.err != nil {
		return m.err
	}
	if m.writes == nil {
		m.writes = map[string]string{}
	}
	m.writes[path] = content
	return nil
}

func orchestratorFixtureRecord() domain.AssessmentRecord {
	return domain.AssessmentRecord{
		"demographics": map[string]any{
			"firstName":   "Sam",
			"lastName":    "Carter",
			"dateOfBirth": "1990-06-15",
		},
		"assessment": map[string]any{
			"date": "2026-08-20",
		},
		"functionalAssessment": map[string]any{
			"rangeOfMotion": map[string]any{
				"limitations": []any{"limited hip flexion"},
			},
		},
	}
}

func TestOrchestrator_GenerateReport(t *testing.T) {
	completer := &scriptedCompleter{}
	storage := &memoryStorage{}
	orch := NewOrchestrator(testLogger(), completer, NewRegistry(testLogger()), storage, domain.ReportConfig{
		OutputDir:    "/tmp/reports",
		AssessorName: "J. Reyes",
		Credentials:  "OT Reg.",
	}, 600)
	orch.now = func() time.Time {
		return time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	}

	generated, err := orch.GenerateReport(context.Background(), "assessment-1", orchestratorFixtureRecord())
	require.NoError(t, err)

	require.Len(t, completer.prompts, 5)
	assert.Contains(t, completer.prompts[0], "background section")
	assert.Contains(t, completer.prompts[1], "symptom presentation section")
	assert.Contains(t, completer.prompts[2], "functional assessment section")
	assert.Contains(t, completer.prompts[3], "activities of daily living section")
	assert.Contains(t, completer.prompts[4], "conclusion section")

	assert.Equal(t, "assessment-1", generated.AssessmentID)
	assert.Equal(t, "Sam Carter", generated.ClientName)
	assert.NotEmpty(t, generated.ID)

	content := generated.Content
	assert.Contains(t, content, "Client: Sam Carter")
	assert.Contains(t, content, "Report Date: 2026-09-01")
	assert.Contains(t, content, "narrative 1")
	assert.Contains(t, content, "narrative 5")
	assert.Contains(t, content, "- Physical Therapy focusing on improving range of motion")
	assert.Contains(t, content, "J. Reyes\nOT Reg.")
	assert.Less(t, strings.Index(content, "## Background"), strings.Index(content, "## Conclusion"))

	require.Len(t, storage.writes, 1)
	for path, stored := range storage.writes {
		assert.True(t, strings.HasPrefix(path, "/tmp/reports/"))
		assert.Equal(t, content, stored)
	}
}

func TestOrchestrator_CompletionFailureAbortsRun(t *testing.T) {
	completer := &scriptedCompleter{failFrom: 3}
	storage := &memoryStorage{}
	orch := NewOrchestrator(testLogger(), completer, NewRegistry(testLogger()), storage, domain.ReportConfig{}, 0)

	_, err := orch.GenerateReport(context.Background(), "assessment-1", orchestratorFixtureRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "functional narrative")
	assert.Len(t, completer.prompts, 3, "later sections are never attempted")
	assert.Empty(t, storage.writes, "no partial report is written")
}

func TestOrchestrator_WriteFailurePropagates(t *testing.T) {
	completer := &scriptedCompleter{}
	storage := &memoryStorage{err: errors.New("disk full")}
	orch := NewOrchestrator(testLogger(), completer, NewRegistry(testLogger()), storage, domain.ReportConfig{}, 0)

	_, err := orch.GenerateReport(context.Background(), "assessment-1", orchestratorFixtureRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDeriveAdvisories(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.AssessmentRecord
		want []string
	}{
		{
			name: "empty record",
			rec:  domain.AssessmentRecord{},
			want: []string{},
		},
		{
			name: "all three triggers",
			rec: domain.AssessmentRecord{
				"functionalAssessment": map[string]any{
					"rangeOfMotion": map[string]any{"limitations": []any{"limited shoulder abduction"}},
				},
				"symptoms": map[string]any{
					"cognitive": []any{map[string]any{"type": "memory", "severity": "Moderate"}},
				},
				"environment": map[string]any{
					"home": map[string]any{"modifications": []any{"stair rail"}},
				},
			},
			want: []string{
				"Physical Therapy focusing on improving range of motion",
				"Occupational Therapy for cognitive strategies during daily activities",
				"Home modifications as identified in the environmental assessment",
			},
		},
		{
			name: "mild cognitive symptoms do not trigger",
			rec: domain.AssessmentRecord{
				"symptoms": map[string]any{
					"cognitive": []any{map[string]any{"type": "attention", "severity": "Mild"}},
				},
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveAdvisories(tt.rec))
		})
	}
}
