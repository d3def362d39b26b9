package history

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// resultSchema validates one persisted test-result record. Range limits
// replace the old magic-number plausibility heuristics: a record with an
// out-of-range score is simply dropped on load.
const resultSchema = `{
	"type": "object",
	"required": ["id", "date", "score", "totalQuestions", "correctAnswers", "testType", "tags"],
	"properties": {
		"id":             {"type": "string"},
		"date":           {"type": "string"},
		"score":          {"type": "number", "minimum": 0, "maximum": 100},
		"totalQuestions": {"type": "number", "minimum": 1},
		"correctAnswers": {"type": "number", "minimum": 0},
		"testType":       {"type": "string"},
		"tags":           {"type": "array", "items": {"type": "string"}},
		"examType":       {"type": "string"}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledResultSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(resultSchema), &def); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://test-result.json"
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateRecord checks one raw record against the schema and the
// correctAnswers <= totalQuestions invariant, returning the decoded result.
func validateRecord(raw json.RawMessage) (TestResult, error) {
	sch, err := compiledResultSchema()
	if err != nil {
		return TestResult{}, err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return TestResult{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return TestResult{}, fmt.Errorf("schema validation failed: %w", err)
	}

	var r TestResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return TestResult{}, fmt.Errorf("decode record: %w", err)
	}
	if r.CorrectAnswers > r.TotalQuestions {
		return TestResult{}, fmt.Errorf("correctAnswers %d exceeds totalQuestions %d", r.CorrectAnswers, r.TotalQuestions)
	}
	return r, nil
}
