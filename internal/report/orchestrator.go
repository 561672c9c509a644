package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/record"
	"github.com/ot-assessment-server/pkg/llm"
)

// dateLayout is the date format used for assessment and report dates.
const dateLayout = "2006-01-02"

// Storage persists the rendered report text as a whole UTF-8 file.
type Storage interface {
	Write(path string, content string) error
}

// FileStorage writes reports to the local filesystem, creating the parent
// directory on first use.
type FileStorage struct{}

// Write writes content to path as a UTF-8 text file.
func (FileStorage) Write(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// Orchestrator sequences narrative generation, template rendering, and report
// persistence for one assessment record.
type Orchestrator struct {
	logger    *logrus.Logger
	completer llm.Completer
	registry  *Registry
	storage   Storage
	config    domain.ReportConfig
	maxTokens int
	now       func() time.Time
}

// NewOrchestrator creates a report orchestrator.
func NewOrchestrator(logger *logrus.Logger, completer llm.Completer, registry *Registry, storage Storage, config domain.ReportConfig, maxTokens int) *Orchestrator {
	if maxTokens <= 0 {
		maxTokens = 800
	}
	return &Orchestrator{
		logger:    logger,
		completer: completer,
		registry:  registry,
		storage:   storage,
		config:    config,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

// narrativeSection pairs a template section with its prompt builder. The slice
// order is the call order; each completion is awaited before the next begins.
type narrativeSection struct {
	name       string
	contentKey string
	prompt     func(domain.AssessmentRecord) string
}

var narrativeSections = []narrativeSection{
	{name: "background", contentKey: "backgroundNarrative", prompt: llm.BackgroundPrompt},
	{name: "symptoms", contentKey: "symptomsNarrative", prompt: llm.SymptomsPrompt},
	{name: "functional", contentKey: "functionalNarrative", prompt: llm.FunctionalPrompt},
	{name: "adl", contentKey: "adlNarrative", prompt: llm.ADLPrompt},
	{name: "conclusion", contentKey: "conclusionNarrative", prompt: llm.ConclusionPrompt},
}

// GenerateReport runs the full report pipeline: five sequential narrative
// completions, advisory recommendation derivation, template rendering, and a
// whole-file write. Any completion or write failure aborts the run; no partial
// report is salvaged.
func (o *Orchestrator) GenerateReport(ctx context.Context, assessmentID string, rec domain.AssessmentRecord) (*domain.GeneratedReport, error) {
	templateName := o.config.DefaultTemplate
	if templateName == "" {
		templateName = DefaultTemplateName
	}

	dynamicContent := make(map[string]map[string]string, len(narrativeSections))
	for _, section := range narrativeSections {
		o.logger.WithField("section", section.name).Info("Generating report narrative")

		result, err := o.completer.Complete(ctx, llm.CompletionRequest{
			Prompt:    section.prompt(rec),
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s narrative: %w", section.name, err)
		}
		dynamicContent[section.name] = map[string]string{section.contentKey: result.Text}
	}

	dynamicContent["recommendations"] = map[string]string{
		"recommendationsList": formatRecommendations(deriveAdvisories(rec)),
	}

	clientName := strings.TrimSpace(record.GetString(rec, "demographics.firstName", "") + " " +
		record.GetString(rec, "demographics.lastName", ""))

	staticData := map[string]string{
		"clientName":          clientName,
		"dateOfBirth":         record.GetString(rec, "demographics.dateOfBirth", ""),
		"assessmentDate":      record.GetString(rec, "assessment.date", ""),
		"reportDate":          o.now().Format(dateLayout),
		"assessorName":        o.config.AssessorName,
		"assessorCredentials": o.config.Credentials,
	}

	content, err := o.registry.GenerateReport(templateName, staticData, dynamicContent)
	if err != nil {
		return nil, fmt.Errorf("failed to render report template: %w", err)
	}

	generated := &domain.GeneratedReport{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		TemplateName: templateName,
		ClientName:   clientName,
		Content:      content,
		CreatedAt:    o.now().UTC(),
	}

	path := filepath.Join(o.config.OutputDir, generated.ID+".md")
	if err := o.storage.Write(path, content); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"report_id":     generated.ID,
		"assessment_id": assessmentID,
		"template":      templateName,
		"path":          path,
	}).Info("Report generated")

	return generated, nil
}

// deriveAdvisories inspects range-of-motion limitations, cognitive symptom
// severity, and environmental modification lists and appends fixed advisory
// strings. This runs independently of the LLM narratives.
func deriveAdvisories(rec domain.AssessmentRecord) []string {
	advisories := []string{}

	if len(record.GetStringSlice(rec, "functionalAssessment.rangeOfMotion.limitations")) > 0 {
		advisories = append(advisories, "Physical Therapy focusing on improving range of motion")
	}

	if hasSignificantCognitiveSymptoms(rec) {
		advisories = append(advisories, "Occupational Therapy for cognitive strategies during daily activities")
	}

	if len(record.GetStringSlice(rec, "environment.home.modifications")) > 0 {
		advisories = append(advisories, "Home modifications as identified in the environmental assessment")
	}

	return advisories
}

func hasSignificantCognitiveSymptoms(rec domain.AssessmentRecord) bool {
	items, ok := record.Get(rec, "symptoms.cognitive", nil).([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		severity, _ := m["severity"].(string)
		switch strings.ToLower(severity) {
		case "moderate", "severe":
			return true
		}
	}
	return false
}

func formatRecommendations(advisories []string) string {
	if len(advisories) == 0 {
		return "No additional recommendations at this time."
	}
	lines := make([]string, len(advisories))
	for i, advisory := range advisories {
		lines[i] = "- " + advisory
	}
	return strings.Join(lines, "\n")
}
