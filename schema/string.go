package schema

// String is a free text schema
type String string

// NewString returns a new String schema pointer
func NewString(v string) *String {
	s := String(v)
	return &s
}

func (s String) IsSchema() {}

func (s String) String() string {
	return string(s)
}

func (s *String) Unmarshal(bs []byte) error {
	*s = String(bs)
	return nil
}
