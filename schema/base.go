package schema

// Base is a base schema
type Base struct{}

// IsSchema implements Schema interface
func (Base) IsSchema() {}
