package shape

// Shape is the kind of search query.
type Shape string

// Query shapes.
const (
	// WordWheel is prefix-biased autocomplete issued while typing.
	WordWheel Shape = "wordwheel"
	// Partial matches the query anywhere inside a field.
	Partial Shape = "partial"
	// Full requires every whitespace-separated term to match some field.
	Full Shape = "full"
)

// IsValid checks if the shape is one of the supported values.
func (s Shape) IsValid() bool {
	return s == WordWheel || s == Partial || s == Full
}

// MinLength is the shortest trimmed query the shape will run.
func (s Shape) MinLength() int {
	switch s {
	case WordWheel, Partial:
		return 3
	default:
		return 1
	}
}
