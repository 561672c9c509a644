package domain

// AssessmentRecord is the raw intake document produced by the assessment form layer.
// It is a deeply nested, partially optional JSON document keyed by domain area
// (demographics, functionalAssessment, symptoms, environment, equipment, ...).
// No shape is guaranteed beyond best-effort validation: any field may be absent,
// and downstream components must read it only through the record accessor, never
// by direct index chains.
//
// The record is owned by the intake layer and is read-only to analysis agents.
type AssessmentRecord = map[string]any

// ValidationResult reports the outcome of rule-engine validation over a record.
// Validation failure is an expected, non-fatal result value; it is never an error.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}
