package analysis

import (
	"github.com/spf13/cast"

	"github.com/ot-assessment-server/internal/domain"
	"github.com/ot-assessment-server/internal/record"
)

// transferEntry is the flattened working view of one transfer sub-record. RawLevel
// carries the assistance-level string exactly as found in the record; enumeration
// checks happen later, at pattern detection.
type transferEntry struct {
	Key            string
	Context        string
	RawLevel       string
	Modifications  []string
	Equipment      []string
	SafetyConcerns []string
}

// symptomEntry is the flattened working view of one physical symptom.
type symptomEntry struct {
	Location string
	Severity string
	PainType string
}

// transfersView is the topic-scoped working structure the pipeline stages operate on.
// Every collection defaults to empty, never nil-with-meaning.
type transfersView struct {
	General          []transferEntry
	Locations        []transferEntry
	CurrentEquipment []string
	PhysicalSymptoms []symptomEntry
	// Hazards holds environmental hazards keyed by transfer location, in the
	// fixed location order of domain.TransferLocations.
	Hazards map[domain.TransferLocation][]string
}

// generalContexts maps the canonical transfer tasks to their narrative context labels.
var generalContexts = map[domain.GeneralTransferType]string{
	domain.BedMobility: "bed mobility",
	domain.SitToStand:  "sit to stand",
}

// extractTransfers pulls the topic-relevant sub-paths out of the record into a flat
// working view. Missing areas become empty collections.
func extractTransfers(rec domain.AssessmentRecord) transfersView {
	transfers := record.GetMap(rec, "functionalAssessment.transfers")

	view := transfersView{
		General:          make([]transferEntry, 0, len(domain.GeneralTransferTypes)),
		Locations:        make([]transferEntry, 0, len(domain.TransferLocations)),
		CurrentEquipment: record.GetStringSlice(rec, "equipment.current"),
		PhysicalSymptoms: extractSymptoms(rec),
		Hazards:          extractHazards(rec),
	}

	for _, general := range domain.GeneralTransferTypes {
		entry := parseTransferEntry(string(general), transfers[string(general)])
		entry.Context = generalContexts[general]
		view.General = append(view.General, entry)
	}

	for _, location := range domain.TransferLocations {
		entry := parseTransferEntry(string(location), transfers[string(location)])
		entry.Context = string(location) + " transfers"
		view.Locations = append(view.Locations, entry)
	}

	return view
}

// parseTransferEntry flattens the two shapes a transfer sub-record may take: a bare
// assistance-level string, or a map carrying the level plus optional annotations.
func parseTransferEntry(key string, raw any) transferEntry {
	entry := transferEntry{
		Key:            key,
		Modifications:  []string{},
		Equipment:      []string{},
		SafetyConcerns: []string{},
	}

	switch value := raw.(type) {
	case string:
		entry.RawLevel = value
	case map[string]any:
		if s, ok := value["assistanceLevel"].(string); ok {
			entry.RawLevel = s
		}
		entry.Modifications = toStringSlice(value["modifications"])
		entry.Equipment = toStringSlice(value["equipment"])
		entry.SafetyConcerns = toStringSlice(value["safetyConcerns"])
	}

	return entry
}

// extractSymptoms flattens symptoms.physical entries, skipping anything that is not
// a map. Absent fields within an entry default to empty strings.
func extractSymptoms(rec domain.AssessmentRecord) []symptomEntry {
	raw := record.Get(rec, "symptoms.physical", nil)
	items, ok := raw.([]any)
	if !ok {
		return []symptomEntry{}
	}

	symptoms := make([]symptomEntry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		symptoms = append(symptoms, symptomEntry{
			Location: stringField(m, "location"),
			Severity: stringField(m, "severity"),
			PainType: stringField(m, "painType"),
		})
	}
	return symptoms
}

// extractHazards reads environment.home.hazards, a map of transfer location to hazard
// descriptions. Entries keyed by anything outside the fixed location set are dropped.
func extractHazards(rec domain.AssessmentRecord) map[domain.TransferLocation][]string {
	hazards := make(map[domain.TransferLocation][]string, len(domain.TransferLocations))
	raw := record.GetMap(rec, "environment.home.hazards")

	for _, location := range domain.TransferLocations {
		entries := toStringSlice(raw[string(location)])
		if len(entries) > 0 {
			hazards[location] = entries
		}
	}
	return hazards
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func toStringSlice(v any) []string {
	if v == nil {
		return []string{}
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil || out == nil {
		return []string{}
	}
	return out
}
