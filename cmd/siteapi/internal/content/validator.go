package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrInvalidDocument is wrapped by every schema violation.
var ErrInvalidDocument = errors.New("invalid section document")

// SchemaError reports the first schema violation of a section document.
type SchemaError struct {
	Key     string
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("section %s: validation failed at '%s': %s", e.Key, e.Path, e.Message)
}

func (e *SchemaError) Unwrap() error { return ErrInvalidDocument }

// SchemaValidator validates section documents against the embedded per-key
// JSON schemas. Compiled schemas are kept in an LRU; documents never are.
// Keys without a schema pass.
type SchemaValidator struct {
	schemaCache *lru.Cache[string, *jsonschema.Schema]
}

// NewSchemaValidator creates a validator with room for cacheSize compiled schemas.
func NewSchemaValidator(cacheSize int) (*SchemaValidator, error) {
	if cacheSize <= 0 {
		cacheSize = len(Keys)
	}
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &SchemaValidator{schemaCache: cache}, nil
}

// Validate checks doc against the schema registered for key.
func (v *SchemaValidator) Validate(key string, doc Document) error {
	schema, err := v.schema(key)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	// Round-trip so the validator sees plain JSON values ([]any, json.Number).
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("section %s: %w", key, err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("section %s: %w", key, err)
	}

	if err := schema.Validate(instance); err != nil {
		return formatValidationError(key, err)
	}
	return nil
}

// HasSchema reports whether writes to key are validated.
func (v *SchemaValidator) HasSchema(key string) bool {
	_, err := schemaFS.ReadFile(schemaFile(key))
	return err == nil
}

func (v *SchemaValidator) schema(key string) (*jsonschema.Schema, error) {
	if cached, ok := v.schemaCache.Get(key); ok {
		return cached, nil
	}

	raw, err := schemaFS.ReadFile(schemaFile(key))
	if err != nil {
		return nil, nil
	}
	schema, err := compileSchema(key, raw)
	if err != nil {
		return nil, err
	}
	v.schemaCache.Add(key, schema)
	return schema, nil
}

func schemaFile(key string) string {
	return "schemas/" + key + ".json"
}

func compileSchema(key string, raw []byte) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", key, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	url := key + ".json"
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", key, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", key, err)
	}
	return schema, nil
}

// formatValidationError reduces a validation error to its deepest cause.
func formatValidationError(key string, err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("section %s: %w", key, err)
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	path := "$"
	for _, part := range ve.InstanceLocation {
		if part != "" {
			path += "." + part
		}
	}

	msg := strings.TrimSpace(ve.Error())
	if i := strings.LastIndex(msg, "': "); i >= 0 {
		msg = msg[i+3:]
	}
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	return &SchemaError{Key: key, Path: path, Message: msg}
}
