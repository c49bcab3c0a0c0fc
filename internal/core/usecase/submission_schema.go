package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

const maxMessageLength = 10000

// submissionSchemaJSON describes the public feedback body. Metadata is only
// required to be an object; its contents are stored as-is.
var submissionSchemaJSON = fmt.Sprintf(`{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"name": {"type": ["string", "null"], "maxLength": 255},
		"email": {
			"anyOf": [
				{"type": "null"},
				{"type": "string", "maxLength": 0},
				{"type": "string", "format": "email", "maxLength": 254}
			]
		},
		"message": {"type": ["string", "null"], "maxLength": %d},
		"rating": {"type": ["integer", "null"], "minimum": %d, "maximum": %d},
		"metadata": {"type": ["object", "null"]}
	}
}`, maxMessageLength, domain.MinRating, domain.MaxRating)

var submissionSchema = sync.OnceValues(func() (*santhosh.Schema, error) {
	return compileSchema(json.RawMessage(submissionSchemaJSON))
})

// DecodeSubmission validates a raw request body against the submission schema
// and decodes it. Violations are returned as *domain.ValidationError.
func DecodeSubmission(raw []byte) (domain.Submission, error) {
	sch, err := submissionSchema()
	if err != nil {
		return domain.Submission{}, fmt.Errorf("compile submission schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Submission{}, domain.NewValidationError("body must be valid json")
	}
	if err := sch.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return domain.Submission{}, domain.NewValidationError(collectValidationErrors(ve)...)
		}
		return domain.Submission{}, domain.NewValidationError(err.Error())
	}

	var wire submissionWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Submission{}, domain.NewValidationError("body does not match the submission format")
	}
	sub := wire.Submission
	if wire.Rating != nil {
		rating, err := integralRating(*wire.Rating)
		if err != nil {
			return domain.Submission{}, err
		}
		sub.Rating = &rating
	}
	return sub, nil
}

// submissionWire reads rating as a JSON number: the schema accepts
// integral values written with a fraction or exponent, such as 4.0.
type submissionWire struct {
	domain.Submission
	Rating *json.Number `json:"rating"`
}

func integralRating(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return 0, domain.NewValidationError("rating: must be an integer")
	}
	return int(f), nil
}

func compileSchema(schemaJSON json.RawMessage) (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	compiler.AssertFormat = true
	if err := compiler.AddResource("submission.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("submission.json")
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		field := strings.TrimPrefix(ve.InstanceLocation, "/")
		if field == "" {
			field = "body"
		}
		msgs = append(msgs, field+": "+ve.Message)
	}
	return msgs
}
