package schema

import (
	"encoding/json"
	"fmt"
)

// Schema is message schema interface
type Schema interface {
	// IsSchema marks a type as a message schema
	IsSchema()
}

// Stringify returns the text presentation of a schema.
// String schemas are returned verbatim, fmt.Stringer implementations use String(), others are JSON encoded
func Stringify(s Schema) string {
	switch v := s.(type) {
	case nil:
		return ""
	case String:
		return string(v)
	case *String:
		if v == nil {
			return ""
		}
		return string(*v)
	case fmt.Stringer:
		return v.String()
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes returns the bytes presentation of a schema
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}
