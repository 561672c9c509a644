package domain

// TransferPattern is a detected (assistance-level, context) pair for a transfer task,
// with optional equipment, modification, and safety annotations. Patterns are computed
// fresh on every analysis call and never persisted.
type TransferPattern struct {
	Type           AssistanceLevel `json:"type"`
	Context        string          `json:"context"`
	Modifications  []string        `json:"modifications"`
	Equipment      []string        `json:"equipment"`
	SafetyConcerns []string        `json:"safety_concerns,omitempty"`
}

// LocationAnalysis is the per-location view of transfer status: the patterns detected
// at one fixed location plus the risks scoped to it (safety concerns and environmental
// hazards re-labelled with the location).
type LocationAnalysis struct {
	Location string            `json:"location"`
	Patterns []TransferPattern `json:"patterns"`
	Risks    []string          `json:"risks"`
}

// TransferStatus aggregates the location views, the two canonical general transfer
// patterns, and the deduplicated required-equipment set.
type TransferStatus struct {
	Locations []LocationAnalysis `json:"locations"`
	// GeneralPatterns covers only bed mobility and sit-to-stand.
	GeneralPatterns []TransferPattern `json:"general_patterns"`
	// RequiredEquipment is deduplicated with first-seen ordering.
	RequiredEquipment []string `json:"required_equipment"`
}

// AnalysisResult is the top-level derived output of a domain analysis agent.
// Ephemeral: produced per invocation, consumed by the formatting layer or serialized
// into a report.
type AnalysisResult struct {
	TransferStatus  TransferStatus `json:"transfer_status"`
	RiskFactors     []string       `json:"risk_factors"`
	Recommendations []string       `json:"recommendations"`
}
