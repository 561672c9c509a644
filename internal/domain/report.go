package domain

import "time"

// ReportSection is one named, ordered block of a report template. The template string
// may contain {{placeholder}} tokens substituted at render time. Order values within a
// template must be unique; ties are a template-definition bug, not a render-time case.
type ReportSection struct {
	Order    int    `json:"order"`
	Template string `json:"template"`
}

// GeneratedReport is a persisted record of one rendered report: the final ordered
// concatenation of rendered sections. The text is write-once.
type GeneratedReport struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessment_id,omitempty"`
	TemplateName string    `json:"template_name"`
	ClientName   string    `json:"client_name,omitempty"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredAssessment is a persisted intake record with bookkeeping metadata.
type StoredAssessment struct {
	ID        string           `json:"id"`
	Record    AssessmentRecord `json:"record"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
