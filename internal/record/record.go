// Package record defines the persisted result of one completed test run and
// its JSON encoding.
package record

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/battery"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/abhisek/lexiscreen/internal/session"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrMalformed is returned when stored data cannot be read back as a Record.
var ErrMalformed = errors.New("malformed result record")

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://record.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Record is the result of one completed test run. The JSON shape is the
// same for every test family.
type Record struct {
	ID      string    `json:"id"`
	Test    string    `json:"test"`
	Title   string    `json:"title"`
	AgeBand string    `json:"ageBand"`
	TakenAt time.Time `json:"takenAt"`

	risk.Assessment

	QuestionResults []assessment.QuestionResult `json:"questionResults"`
}

// FromSession builds the record for a completed session.
func FromSession(b *battery.Battery, s *session.Session) (*Record, error) {
	a, err := s.Assessment()
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:              s.ID(),
		Test:            b.ID,
		Title:           b.Title,
		AgeBand:         b.AgeBand,
		TakenAt:         s.StartedAt().UTC(),
		Assessment:      *a,
		QuestionResults: s.Results(),
	}, nil
}

// Encode returns the JSON form of r. Nil lists encode as [].
func Encode(r *Record) ([]byte, error) {
	out := *r
	if out.RiskFactors == nil {
		out.RiskFactors = []string{}
	}
	if out.QuestionResults == nil {
		out.QuestionResults = []assessment.QuestionResult{}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// Decode parses and validates a stored record. Anything that does not match
// the record schema fails with ErrMalformed.
func Decode(data []byte) (*Record, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	schema, err := recordSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if r.RiskFactors == nil {
		r.RiskFactors = []string{}
	}
	return &r, nil
}

func recordSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse record schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
