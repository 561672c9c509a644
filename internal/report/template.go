// Package report implements the medico-legal report template system and the
// orchestrator that sequences LLM narrative generation, template rendering, and
// report persistence.
package report

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
)

// DefaultTemplateName is the built-in OT medico-legal report template.
const DefaultTemplateName = "ot-medico-legal"

// placeholderPattern matches {{key}} tokens. Unknown keys are left verbatim so a
// missing data entry is visible in the rendered report rather than silently
// blanked.
var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Registry holds named report templates. Templates are maps of section name to
// section; render order comes from each section's Order value, never from map
// iteration.
type Registry struct {
	logger    *logrus.Logger
	templates map[string]map[string]domain.ReportSection
}

// NewRegistry creates a template registry preloaded with the default OT
// medico-legal template.
func NewRegistry(logger *logrus.Logger) *Registry {
	r := &Registry{
		logger:    logger,
		templates: make(map[string]map[string]domain.ReportSection),
	}
	r.templates[DefaultTemplateName] = defaultTemplate()
	return r
}

func defaultTemplate() map[string]domain.ReportSection {
	return map[string]domain.ReportSection{
		"header": {
			Order: 1,
			Template: "# Occupational Therapy Assessment Report\n\n" +
				"Client: {{clientName}}\n" +
				"Date of Birth: {{dateOfBirth}}\n" +
				"Assessment Date: {{assessmentDate}}\n" +
				"Report Date: {{reportDate}}",
		},
		"background": {
			Order:    2,
			Template: "## Background\n\n{{backgroundNarrative}}",
		},
		"symptoms": {
			Order:    3,
			Template: "## Symptom Presentation\n\n{{symptomsNarrative}}",
		},
		"functional": {
			Order:    4,
			Template: "## Functional Assessment\n\n{{functionalNarrative}}",
		},
		"adl": {
			Order:    5,
			Template: "## Activities of Daily Living\n\n{{adlNarrative}}",
		},
		"recommendations": {
			Order:    6,
			Template: "## Recommendations\n\n{{recommendationsList}}",
		},
		"conclusion": {
			Order:    7,
			Template: "## Conclusion\n\n{{conclusionNarrative}}",
		},
		"signature": {
			Order:    8,
			Template: "{{assessorName}}\n{{assessorCredentials}}",
		},
	}
}

// GenerateReport renders the named template. Every section gets a static-data
// substitution pass, then a second pass from the per-section dynamic content map
// when one exists. Sections render in ascending Order and are joined with a
// blank line.
func (r *Registry) GenerateReport(templateName string, staticData map[string]string, dynamicContent map[string]map[string]string) (string, error) {
	template, ok := r.templates[templateName]
	if !ok {
		return "", &domain.TemplateNotFoundError{Name: templateName}
	}

	names := make([]string, 0, len(template))
	for name := range template {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return template[names[i]].Order < template[names[j]].Order
	})

	rendered := make([]string, 0, len(names))
	for _, name := range names {
		text := substitute(template[name].Template, staticData)
		if sectionData, ok := dynamicContent[name]; ok {
			text = substitute(text, sectionData)
		}
		rendered = append(rendered, text)
	}

	r.logger.WithFields(logrus.Fields{
		"template": templateName,
		"sections": len(rendered),
	}).Debug("Rendered report template")

	return strings.Join(rendered, "\n\n"), nil
}

// AddSection adds a section to an existing template. The template must exist;
// an existing section of the same name is replaced.
func (r *Registry) AddSection(templateName, sectionName string, section domain.ReportSection) error {
	template, ok := r.templates[templateName]
	if !ok {
		return &domain.TemplateNotFoundError{Name: templateName}
	}
	template[sectionName] = section
	return nil
}

// ModifySection replaces an existing section. Both the template and the section
// must already exist.
func (r *Registry) ModifySection(templateName, sectionName string, section domain.ReportSection) error {
	template, ok := r.templates[templateName]
	if !ok {
		return &domain.TemplateNotFoundError{Name: templateName}
	}
	if _, ok := template[sectionName]; !ok {
		return &domain.SectionNotFoundError{Template: templateName, Section: sectionName}
	}
	template[sectionName] = section
	return nil
}

// substitute replaces each {{key}} token present in data and leaves the token
// verbatim otherwise.
func substitute(template string, data map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := data[key]; ok {
			return value
		}
		return match
	})
}
