package filter

import "fmt"

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured exact-match filter with must/should/must_not
// boolean semantics. Filters restrict the candidate set; they never score.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(should) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many should conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Scope builds the owner + entity kind filter every search carries.
func Scope(ownerField, ownerID, kindField, kind string) (Expression, error) {
	owner, err := NewMatch(ownerField, ownerID)
	if err != nil {
		return Expression{}, err
	}
	k, err := NewMatch(kindField, kind)
	if err != nil {
		return Expression{}, err
	}
	return NewExpression([]Condition{owner, k}, nil, nil)
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// MustValue returns the value of the first must condition on key.
func (e Expression) MustValue(key string) (string, bool) {
	for _, c := range e.must {
		if c.key == key {
			return c.match, true
		}
	}
	return "", false
}

// Condition is a single exact tag match.
type Condition struct {
	key   string
	match string
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }
