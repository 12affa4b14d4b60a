package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildFilenameJSONSchema returns the JSON-Schema (draft 2020-12 subset)
// replies must match. It doubles as the structured-output constraint we
// describe to the model.
func BuildFilenameJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"filename": map[string]any{"type": "string", "minLength": 1, "maxLength": 300},
		},
		"required": []string{"filename"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParseFilenameReply extracts the candidate filename from a model reply.
// The strict path is a JSON object validated against the schema; as a
// lenient fallback a bare string reply is accepted, since providers vary
// in how faithfully they honor structured output.
func ParseFilenameReply(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty reply")
	}

	// Models sometimes fence the JSON in markdown.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "{") {
		raw := []byte(content)
		if err := ValidateJSONAgainstSchema(BuildFilenameJSONSchema(), raw); err != nil {
			return "", err
		}
		var out struct {
			Filename string `json:"filename"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", fmt.Errorf("unmarshal reply: %w", err)
		}
		return out.Filename, nil
	}

	// Bare string: take the first line, shed surrounding quotes.
	line := strings.TrimSpace(strings.SplitN(content, "\n", 2)[0])
	line = strings.Trim(line, `"'`)
	if line == "" {
		return "", fmt.Errorf("reply contained no filename")
	}
	return line, nil
}
