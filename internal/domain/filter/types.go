// Package filter defines structured list filters passed from the API layer
// down to repositories.
package filter

// ComparisonType enumerates the supported comparison kinds.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Less           ComparisonType = "lt"
	Greater        ComparisonType = "gt"
	LessOrEqual    ComparisonType = "lte"
	GreaterOrEqual ComparisonType = "gte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains"  // ILIKE %val%
	NotContains    ComparisonType = "ncontains" // NOT ILIKE %val%
	IsNull         ComparisonType = "null"
	IsNotNull      ComparisonType = "not_null"
)

// Item is one filter row: field, operator, value.
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}
