// Package domain contains core business entities and types for occupational-therapy
// assessment intake and medico-legal report generation.
//
// Assistance-level terminology follows standard OT/PT functional assessment scales
// (FIM-style ordinal levels from fully independent to maximum assistance).
package domain

import (
	"errors"
)

// AssistanceLevel represents how much human help a transfer or mobility task requires.
// Only the five enumerated values are clinically meaningful; any other string found in
// an assessment record is treated as not assessed during pattern detection.
type AssistanceLevel string

const (
	Independent         AssistanceLevel = "independent"
	ModifiedIndependent AssistanceLevel = "modified_independent"
	MinimalAssist       AssistanceLevel = "minimal_assist"
	ModerateAssist      AssistanceLevel = "moderate_assist"
	MaximumAssist       AssistanceLevel = "maximum_assist"
)

// TransferLocation represents a fixed body-transfer location assessed in the home.
type TransferLocation string

const (
	LocationBed    TransferLocation = "bed"
	LocationChair  TransferLocation = "chair"
	LocationToilet TransferLocation = "toilet"
	LocationShower TransferLocation = "shower"
)

// TransferLocations is the fixed assessment order for per-location analysis.
// Iteration over this slice, never over a map, keeps analysis output reproducible.
var TransferLocations = []TransferLocation{
	LocationBed, LocationChair, LocationToilet, LocationShower,
}

// GeneralTransferType identifies the two canonical whole-body transfer tasks
// assessed independently of location.
type GeneralTransferType string

const (
	BedMobility GeneralTransferType = "bedMobility"
	SitToStand  GeneralTransferType = "sitToStand"
)

// GeneralTransferTypes is the fixed assessment order for the canonical tasks.
var GeneralTransferTypes = []GeneralTransferType{BedMobility, SitToStand}

// DetailLevel selects the verbosity of rendered narrative text.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailDetailed DetailLevel = "detailed"
)

// Sentinel errors for assessment data integrity.
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidAssistanceLevel = errors.New("invalid assistance level")
	ErrInvalidDetailLevel     = errors.New("invalid detail level")
)

// IsValid reports whether the assistance level is a member of the clinical enumeration.
// Pattern detection must exclude any value for which this returns false; a misspelled
// or free-text level must never surface as a detected transfer pattern.
func (a AssistanceLevel) IsValid() bool {
	switch a {
	case Independent, ModifiedIndependent, MinimalAssist, ModerateAssist, MaximumAssist:
		return true
	default:
		return false
	}
}

// String returns the string representation of the assistance level.
func (a AssistanceLevel) String() string {
	return string(a)
}

// RequiresAssistance reports whether the level implies hands-on or supervised help.
// Used to decide whether equipment referenced at this level remains "required".
func (a AssistanceLevel) RequiresAssistance() bool {
	switch a {
	case Independent, ModifiedIndependent:
		return false
	default:
		return true
	}
}

// IsHighAssistance reports whether the level indicates substantial caregiver burden.
// Drives the high-assistance risk line and the caregiver-training recommendation.
func (a AssistanceLevel) IsHighAssistance() bool {
	return a == ModerateAssist || a == MaximumAssist
}

// Summary returns a reader-facing label for brief narrative output.
func (a AssistanceLevel) Summary() string {
	switch a {
	case Independent:
		return "Independent"
	case ModifiedIndependent:
		return "Modified independent"
	case MinimalAssist:
		return "Minimal assistance"
	case ModerateAssist:
		return "Moderate assistance"
	case MaximumAssist:
		return "Maximum assistance"
	default:
		return "Not assessed"
	}
}

// severityRank orders assistance levels for worst-case reduction in brief output.
// Higher rank means more assistance. Invalid levels rank below everything.
func (a AssistanceLevel) severityRank() int {
	switch a {
	case MaximumAssist:
		return 4
	case ModerateAssist:
		return 3
	case MinimalAssist:
		return 2
	case ModifiedIndependent:
		return 1
	case Independent:
		return 0
	default:
		return -1
	}
}

// MostSevere returns the highest-assistance level among the given levels, or the
// zero value when the slice is empty or holds only invalid levels.
func MostSevere(levels []AssistanceLevel) AssistanceLevel {
	var worst AssistanceLevel
	rank := -1
	for _, l := range levels {
		if r := l.severityRank(); r > rank {
			worst, rank = l, r
		}
	}
	return worst
}

// IsValid reports whether the detail level is recognized.
func (d DetailLevel) IsValid() bool {
	switch d {
	case DetailBrief, DetailStandard, DetailDetailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the detail level.
func (d DetailLevel) String() string {
	return string(d)
}

// IsValid reports whether the location is a member of the fixed location set.
func (l TransferLocation) IsValid() bool {
	switch l {
	case LocationBed, LocationChair, LocationToilet, LocationShower:
		return true
	default:
		return false
	}
}

// String returns the string representation of the transfer location.
func (l TransferLocation) String() string {
	return string(l)
}

// LogFields returns structured logging fields for audit trails of assistance findings.
func (a AssistanceLevel) LogFields() map[string]any {
	return map[string]any{
		"assistance_level":     string(a),
		"is_valid":             a.IsValid(),
		"requires_assistance":  a.RequiresAssistance(),
		"high_assistance_need": a.IsHighAssistance(),
	}
}
