package modelclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// SchemaField declares one top-level property of a structured-output
// contract: just a type name, matching spec.md §4.6's "minimal JSON-Schema
// surface (only top-level property types + required list)".
type SchemaField struct {
	Name     string
	Type     string // "string", "number", "boolean", "array"
	Required bool
}

// Schema is the minimal structured-output contract the Model Client
// enforces by prompt discipline rather than an API feature.
type Schema struct {
	Name   string
	Fields []SchemaField
}

func (s Schema) exampleJSON() string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range s.Fields {
		b.WriteString(fmt.Sprintf("  %q: <%s>", f.Name, f.Type))
		if i < len(s.Fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func (s Schema) requiredNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func validateRequired(doc map[string]any, required []string) error {
	for _, name := range required {
		if _, ok := doc[name]; !ok {
			return fmt.Errorf("missing required field %q", name)
		}
	}
	return nil
}

// CompleteStructured issues a structured-output generation call, parses and
// validates the response against schema, and makes up to maxRetries attempts
// in total, sleeping 1s after each failed one (spec.md §4.6 structured output
// protocol).
// out must be a pointer; on success it is populated via sonic.Unmarshal.
func (c *Client) CompleteStructured(ctx context.Context, messages []Message, schema Schema, modelType ModelType, temperature float64, maxRetries int, out any) error {
	ctx, span := c.tracer.Start(ctx, "Structured LLM Call")
	defer span.End()

	schemaPrompt := fmt.Sprintf(
		"CRITICAL: Respond with ONLY a valid JSON object. No explanations, no schema definitions.\n\n"+
			"Example format:\n%s\n\nYour response must be ACTUAL DATA matching this structure, not the schema itself.",
		schema.exampleJSON(),
	)

	enhanced := make([]Message, len(messages))
	copy(enhanced, messages)
	if len(enhanced) > 0 && enhanced[0].Role == "system" {
		enhanced[0].Content = enhanced[0].Content + "\n\n" + schemaPrompt
	} else {
		enhanced = append([]Message{{Role: "system", Content: schemaPrompt}}, enhanced...)
	}

	var lastErr error
	var lastRaw string
	for attempt := 0; attempt < maxRetries; attempt++ {
		raw, err := c.Complete(ctx, enhanced, modelType, temperature, 800)
		if err != nil {
			var credErr *InsufficientCreditsError
			if asInsufficientCredits(err, &credErr) {
				span.RecordError(err)
				return err
			}
			lastErr = err
			time.Sleep(time.Second)
			continue
		}
		lastRaw = raw

		cleaned := stripFences(raw)

		var doc map[string]any
		if err := sonic.UnmarshalString(cleaned, &doc); err != nil {
			lastErr = err
			if c.logger != nil {
				c.logger.Warn("structured output json parse failed", zap.Int("attempt", attempt+1), zap.Error(err))
			}
			time.Sleep(time.Second)
			continue
		}
		if err := validateRequired(doc, schema.requiredNames()); err != nil {
			lastErr = err
			time.Sleep(time.Second)
			continue
		}
		if err := sonic.UnmarshalString(cleaned, out); err != nil {
			lastErr = err
			time.Sleep(time.Second)
			continue
		}
		return nil
	}

	err := &StructuredParseError{RawResponse: lastRaw, Err: lastErr}
	span.RecordError(err)
	return err
}
