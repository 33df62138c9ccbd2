// Package battery defines the screening tests a user can take. Each battery
// is a fixed list of questions plus the scoring configuration for its family.
package battery

import (
	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/risk"
)

// Family groups batteries that measure the same skill.
type Family string

const (
	FamilyReading      Family = "reading"
	FamilyPhonological Family = "phonological"
	FamilyMemory       Family = "memory"
	FamilySequencing   Family = "sequencing"
	FamilySpelling     Family = "spelling"
	FamilyCustom       Family = "custom"
)

// Battery is one screening test.
type Battery struct {
	ID          string
	Family      Family
	Title       string
	AgeBand     string
	Description string

	// Thresholds are the response-time limits for this battery.
	Thresholds risk.Thresholds

	// Rules are evaluated after the default rules.
	Rules []risk.Rule

	Questions []assessment.Question
}

// ClassifierConfig returns the risk configuration for this battery.
func (b *Battery) ClassifierConfig() risk.Config {
	cfg := risk.DefaultConfig()
	cfg.Thresholds = b.Thresholds
	cfg.Rules = append(cfg.Rules, b.Rules...)
	return cfg
}

// Classifier returns a classifier configured for this battery.
func (b *Battery) Classifier() *risk.Classifier {
	return risk.New(b.ClassifierConfig())
}

// Timed reports whether any question has a timed presentation.
func (b *Battery) Timed() bool {
	for i := range b.Questions {
		if b.Questions[i].Timed() {
			return true
		}
	}
	return false
}
