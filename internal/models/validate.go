package models

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/analysis.schema.json
var analysisSchema string

var analysisSchemaLoader = gojsonschema.NewStringLoader(analysisSchema)

var ErrInvalidAnalysisPayload = errors.New("invalid analysis payload")

// SchemaError lists the individual schema violations of a payload.
type SchemaError struct {
	Details []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Details, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidAnalysisPayload
}

// ValidateAnalysisPayload checks raw analysisData JSON against the analysis
// schema and decodes it.
func ValidateAnalysisPayload(raw []byte) (*AnalysisResult, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return nil, &SchemaError{Details: []string{"analysisData is required"}}
	}

	res, err := gojsonschema.Validate(analysisSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysisPayload, err)
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		return nil, &SchemaError{Details: details}
	}

	var analysis AnalysisResult
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnalysisPayload, err)
	}
	return &analysis, nil
}
