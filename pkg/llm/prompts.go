package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/record"
)

// Prompt builders for the five report narrative sections. Each interpolates
// record sub-fields into a fixed instruction template; missing fields surface as
// empty strings or empty JSON blocks, never abort the build.

// BackgroundPrompt builds the client background narrative prompt.
func BackgroundPrompt(rec domain.AssessmentRecord) string {
	return fmt.Sprintf(`Write the background section of an occupational therapy medico-legal report in professional third-person prose.

Client: %s
Date of birth: %s
Occupation: %s
Incident date: %s
Incident description: %s
Relevant medical history: %s

Cover the client's pre-incident status, the incident itself, and the referral context. Do not invent facts not present above.`,
		clientName(rec),
		record.GetString(rec, "demographics.dateOfBirth", ""),
		record.GetString(rec, "demographics.occupation", ""),
		record.GetString(rec, "incident.date", ""),
		record.GetString(rec, "incident.description", ""),
		strings.Join(record.GetStringSlice(rec, "medicalHistory.conditions"), ", "))
}

// SymptomsPrompt builds the symptom presentation narrative prompt.
func SymptomsPrompt(rec domain.AssessmentRecord) string {
	return fmt.Sprintf(`Write the symptom presentation section of an occupational therapy medico-legal report in professional third-person prose.

Client: %s
Physical symptoms: %s
Cognitive symptoms: %s
Emotional symptoms: %s

Describe each symptom's location, severity, and character, and its reported functional impact. Do not invent symptoms not present above.`,
		clientName(rec),
		jsonBlock(record.Get(rec, "symptoms.physical", []any{})),
		jsonBlock(record.Get(rec, "symptoms.cognitive", []any{})),
		jsonBlock(record.Get(rec, "symptoms.emotional", []any{})))
}

// FunctionalPrompt builds the functional assessment narrative prompt.
func FunctionalPrompt(rec domain.AssessmentRecord) string {
	return fmt.Sprintf(`Write the functional assessment section of an occupational therapy medico-legal report in professional third-person prose.

Client: %s
Transfer assessment: %s
Mobility: %s
Range of motion limitations: %s

Summarize observed transfer performance, assistance levels, mobility status, and movement limitations. Do not invent findings not present above.`,
		clientName(rec),
		jsonBlock(record.GetMap(rec, "functionalAssessment.transfers")),
		jsonBlock(record.GetMap(rec, "functionalAssessment.mobility")),
		strings.Join(record.GetStringSlice(rec, "functionalAssessment.rangeOfMotion.limitations"), ", "))
}

// ADLPrompt builds the activities-of-daily-living narrative prompt.
func ADLPrompt(rec domain.AssessmentRecord) string {
	return fmt.Sprintf(`Write the activities of daily living section of an occupational therapy medico-legal report in professional third-person prose.

Client: %s
Self care: %s
Home management: %s
Community activities: %s

Describe the client's current level of independence in each area and any task modifications in use. Do not invent findings not present above.`,
		clientName(rec),
		jsonBlock(record.GetMap(rec, "adl.selfCare")),
		jsonBlock(record.GetMap(rec, "adl.homeManagement")),
		jsonBlock(record.GetMap(rec, "adl.community")))
}

// ConclusionPrompt builds the report conclusion narrative prompt.
func ConclusionPrompt(rec domain.AssessmentRecord) string {
	return fmt.Sprintf(`Write the conclusion section of an occupational therapy medico-legal report in professional third-person prose.

Client: %s
Primary concerns: %s
Stated goals: %s

Summarize the overall functional picture and the anticipated need for ongoing therapy, equipment, and support. Keep the tone measured and evidence-based. Do not invent facts not present above.`,
		clientName(rec),
		strings.Join(record.GetStringSlice(rec, "demographics.primaryConcerns"), ", "),
		strings.Join(record.GetStringSlice(rec, "demographics.goals"), ", "))
}

func clientName(rec domain.AssessmentRecord) string {
	return strings.TrimSpace(record.GetString(rec, "demographics.firstName", "") + " " +
		record.GetString(rec, "demographics.lastName", ""))
}

// jsonBlock renders a record sub-structure as compact JSON for prompt
// interpolation. Unencodable values degrade to an empty object.
func jsonBlock(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
