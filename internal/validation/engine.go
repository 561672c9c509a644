// Package validation implements the declarative rule engine evaluated against
// assessment records before analysis and report generation.
package validation

import (
	"github.com/sirupsen/logrus"

	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/record"
)

// Rule pairs a pure predicate over the full record with the human-readable message
// reported when the predicate fails. Rules must be side-effect-free.
type Rule struct {
	Check   func(rec domain.AssessmentRecord) bool
	Message string
}

// Topic owns the validation configuration for one assessment area: an ordered list of
// required field paths and an ordered list of custom rules. Both are fixed at topic
// definition time and never mutated afterwards.
type Topic struct {
	Name           string
	RequiredFields []string
	Rules          []Rule
}

// Engine evaluates topics against assessment records. Validation failure is reported
// as a result value; Validate never returns an error and never panics on malformed
// records.
type Engine struct {
	logger   *logrus.Logger
	topic    Topic
	disabled bool
}

// NewEngine creates a validation engine for one topic. When cfg.Disabled is set every
// record validates clean; this is the configured escape hatch for load testing.
func NewEngine(logger *logrus.Logger, topic Topic, cfg domain.ValidationConfig) *Engine {
	return &Engine{
		logger:   logger,
		topic:    topic,
		disabled: cfg.Disabled,
	}
}

// Validate checks the record against the topic's required fields and custom rules.
//
// Required fields stop at the first missing path with a single generic error; custom
// rules are always evaluated in full regardless of the required-field outcome, each
// failure appending its message.
func (e *Engine) Validate(rec domain.AssessmentRecord) domain.ValidationResult {
	if e.disabled {
		return domain.ValidationResult{IsValid: true, Errors: []string{}}
	}

	errs := []string{}

	for _, path := range e.topic.RequiredFields {
		if !record.Has(rec, path) {
			e.logger.WithFields(logrus.Fields{
				"topic": e.topic.Name,
				"field": path,
			}).Debug("Required field missing")
			errs = append(errs, "Required fields missing")
			break
		}
	}

	for _, rule := range e.topic.Rules {
		if !rule.Check(rec) {
			errs = append(errs, rule.Message)
		}
	}

	result := domain.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}

	e.logger.WithFields(logrus.Fields{
		"topic":    e.topic.Name,
		"is_valid": result.IsValid,
		"errors":   len(result.Errors),
	}).Debug("Completed record validation")

	return result
}

// Topic returns the engine's topic name.
func (e *Engine) Topic() string {
	return e.topic.Name
}
