// Package schema generates JSON Schemas for tool inputs and validates
// incoming arguments against them.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
)

// Generate reflects a JSON Schema from a Go type. Struct fields map to
// object properties via their json tags; fields without omitempty are
// required, matching the jsonschema reflector's defaults.
func Generate(t reflect.Type) (*jsonschema.Schema, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r := &jsonschema.Reflector{
		DoNotReference: true, // inline defs
		ExpandedStruct: true, // put the struct at the schema root
	}
	s := r.ReflectFromType(t)
	if s == nil {
		return nil, fmt.Errorf("schema: cannot reflect type %s", t)
	}
	if t.Kind() == reflect.Struct && s.Type != "object" {
		return nil, fmt.Errorf("schema: type %s did not produce an object schema", t)
	}
	return s, nil
}

// Validate checks input against s. It verifies that the input is a JSON
// object, that every required property is present, and that present
// properties match their declared primitive types. Nested schemas are
// not descended into; the typed unmarshal into the handler's input
// struct catches deeper mismatches.
func Validate(s *jsonschema.Schema, input json.RawMessage) error {
	if s == nil {
		return nil
	}

	if len(input) == 0 {
		if len(s.Required) > 0 {
			return fmt.Errorf("missing required properties: %s", strings.Join(s.Required, ", "))
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(input, &obj); err != nil {
		return fmt.Errorf("arguments must be a JSON object: %w", err)
	}

	var missing []string
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required properties: %s", strings.Join(missing, ", "))
	}

	if s.Properties == nil {
		return nil
	}
	for el := s.Properties.Oldest(); el != nil; el = el.Next() {
		raw, ok := obj[el.Key]
		if !ok || el.Value == nil {
			continue
		}
		if err := checkType(el.Key, el.Value.Type, raw); err != nil {
			return err
		}
	}
	return nil
}

func checkType(name, schemaType string, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}

	ok := true
	switch schemaType {
	case "string":
		_, ok = v.(string)
	case "number":
		_, ok = v.(float64)
	case "integer":
		f, isNum := v.(float64)
		ok = isNum && f == float64(int64(f))
	case "boolean":
		_, ok = v.(bool)
	case "array":
		_, ok = v.([]any)
	case "object":
		_, ok = v.(map[string]any)
	}
	if !ok {
		return fmt.Errorf("property %q: expected %s", name, schemaType)
	}
	return nil
}
