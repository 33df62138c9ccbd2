package battery

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abhisek/lexiscreen/internal/assessment"
	"github.com/abhisek/lexiscreen/internal/risk"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://battery.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// definition is the on-disk YAML shape of a battery.
type definition struct {
	ID          string           `yaml:"id"`
	Family      string           `yaml:"family"`
	Title       string           `yaml:"title"`
	AgeBand     string           `yaml:"ageBand"`
	Description string           `yaml:"description"`
	Thresholds  *risk.Thresholds `yaml:"thresholds"`
	Rules       []ruleDef        `yaml:"rules"`
	Questions   []questionDef    `yaml:"questions"`
}

type ruleDef struct {
	Type         string   `yaml:"type"`
	Factor       string   `yaml:"factor"`
	Below        float64  `yaml:"below"`
	Above        float64  `yaml:"above"`
	MinErrors    int      `yaml:"minErrors"`
	Kind         string   `yaml:"kind"`
	Difficulties []string `yaml:"difficulties"`
}

type questionDef struct {
	Kind           string   `yaml:"kind"`
	Prompt         string   `yaml:"prompt"`
	Options        []string `yaml:"options"`
	Stimulus       []string `yaml:"stimulus"`
	Hint           string   `yaml:"hint"`
	Sentence       string   `yaml:"sentence"`
	AnswerIndex    *int     `yaml:"answerIndex"`
	AnswerItems    []string `yaml:"answerItems"`
	AnswerText     string   `yaml:"answerText"`
	Difficulty     string   `yaml:"difficulty"`
	PresentSeconds float64  `yaml:"presentSeconds"`
}

// Load reads and validates a battery definition from a YAML file.
func Load(path string) (*Battery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read battery: %w", err)
	}
	return Parse(data, filepath.Base(path))
}

// Parse validates a YAML battery definition against the battery schema and
// converts it. source names the definition in error messages.
func Parse(data []byte, source string) (*Battery, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Source: source, Message: "invalid YAML", Err: err}
	}
	if err := validateDocument(doc); err != nil {
		return nil, &ValidationError{Source: source, Message: "schema validation failed", Err: err}
	}

	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &ValidationError{Source: source, Message: "decode definition", Err: err}
	}
	return def.battery(source)
}

// validateDocument checks a decoded YAML document against the schema. The
// document goes through JSON first so numbers and maps have the shapes the
// validator expects.
func validateDocument(doc any) error {
	schema, err := batterySchema()
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert to JSON: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return schema.Validate(parsed)
}

func batterySchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse battery schema: %w", err)
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

func (d *definition) battery(source string) (*Battery, error) {
	b := &Battery{
		ID:          d.ID,
		Family:      Family(d.Family),
		Title:       d.Title,
		AgeBand:     d.AgeBand,
		Description: d.Description,
		Thresholds:  risk.DefaultThresholds(),
	}
	if b.AgeBand == "" {
		b.AgeBand = "standard"
	}
	if d.Thresholds != nil {
		b.Thresholds = *d.Thresholds
	}

	for i, rd := range d.Rules {
		rule, err := rd.rule()
		if err != nil {
			return nil, &ValidationError{Source: source, Message: fmt.Sprintf("rule %d", i), Err: err}
		}
		b.Rules = append(b.Rules, rule)
	}

	for i, qd := range d.Questions {
		q, err := qd.question()
		if err != nil {
			return nil, &ValidationError{Source: source, Message: fmt.Sprintf("question %d", i), Err: err}
		}
		b.Questions = append(b.Questions, q)
	}
	return b, nil
}

func (r *ruleDef) rule() (risk.Rule, error) {
	switch r.Type {
	case "accuracy":
		return &risk.AccuracyRule{Below: r.Below, Factor: r.Factor}, nil
	case "time-score":
		return &risk.TimeScoreRule{Below: r.Below, Factor: r.Factor}, nil
	case "easy-errors":
		return &risk.EasyErrorRule{MinErrors: r.MinErrors, Factor: r.Factor}, nil
	case "kind-accuracy":
		kind := assessment.Kind(r.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: kind-accuracy rule needs a question kind", assessment.ErrInvalidArgument)
		}
		return &risk.KindAccuracyRule{Kind: kind, Below: r.Below, Factor: r.Factor}, nil
	case "difficulty-accuracy":
		if len(r.Difficulties) == 0 {
			return nil, fmt.Errorf("%w: difficulty-accuracy rule needs difficulties", assessment.ErrInvalidArgument)
		}
		ds := make([]assessment.Difficulty, len(r.Difficulties))
		for i, d := range r.Difficulties {
			ds[i] = assessment.Difficulty(d)
		}
		return &risk.DifficultyAccuracyRule{Difficulties: ds, Below: r.Below, Factor: r.Factor}, nil
	case "average-time":
		return &risk.AverageTimeRule{AboveSeconds: r.Above, Factor: r.Factor}, nil
	}
	return nil, fmt.Errorf("%w: unknown rule type %q", assessment.ErrInvalidArgument, r.Type)
}

func (qd *questionDef) question() (assessment.Question, error) {
	q := assessment.Question{
		Kind:                 assessment.Kind(qd.Kind),
		Prompt:               qd.Prompt,
		Options:              qd.Options,
		Stimulus:             qd.Stimulus,
		Hint:                 qd.Hint,
		Sentence:             qd.Sentence,
		AnswerItems:          qd.AnswerItems,
		AnswerText:           qd.AnswerText,
		Difficulty:           assessment.Difficulty(qd.Difficulty),
		PresentationDuration: time.Duration(qd.PresentSeconds * float64(time.Second)),
	}
	if q.Kind == assessment.KindSingleChoice {
		if qd.AnswerIndex == nil {
			return q, fmt.Errorf("%w: single-choice question needs answerIndex", assessment.ErrInvalidArgument)
		}
		q.AnswerIndex = *qd.AnswerIndex
	}
	if err := q.Validate(); err != nil {
		return q, err
	}
	return q, nil
}
