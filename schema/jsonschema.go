package schema

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/invopop/jsonschema"
)

var (
	reflector = &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	jsonSchemaCache sync.Map
)

// JSONSchema returns the JSON schema definition of v's type.
// Results are cached per type.
func JSONSchema(v any) (string, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "", nil
	}
	if cached, ok := jsonSchemaCache.Load(t); ok {
		return cached.(string), nil
	}
	s := reflector.ReflectFromType(t)
	bs, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	ret := string(bs)
	jsonSchemaCache.Store(t, ret)
	return ret, nil
}
