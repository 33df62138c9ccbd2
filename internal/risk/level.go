package risk

import (
	"fmt"
	"strings"
)

// Level is a coarse screening severity. Levels are totally ordered:
// Low < Moderate < High.
type Level int

const (
	Low Level = iota
	Moderate
	High
)

func (l Level) String() string {
	switch l {
	case Low:
		return "Low"
	case Moderate:
		return "Moderate"
	case High:
		return "High"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses "Low", "Moderate" or "High" (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "moderate":
		return Moderate, nil
	case "high":
		return High, nil
	}
	return Low, fmt.Errorf("unknown risk level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if l < Low || l > High {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
