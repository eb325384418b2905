package gopaginator

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _encoder = base64.RawURLEncoding

// TokenElement is a triple (c, v, o) where:
//
//   - "c" - the column.
//   - "v" - the value of the column in the last item of the previous page.
//   - "o" - the operator applied to the pair (c, v).
type TokenElement struct {
	Column   string   `json:"c"`
	Value    any      `json:"v"`
	Operator Operator `json:"o"`
}

// KeysetToken is the opaque key used by GORMSource for keyset pagination.
// An empty token means the beginning of the dataset.
//
// A token with elements [(C1, O1, V1), (C2, O2, V2) ... (Cn, On, Vn)] selects
// the rows matching
//
//	(C1 O1 V1) OR (C1 = V1 AND C2 O2 V2) OR ... OR (C1 = V1 AND ... AND Cn On Vn)
//
// IMPORTANT:
// The token MUST contain a condition on a unique column, otherwise rows
// sharing all values with the last item are skipped.
type KeysetToken struct {
	elements []TokenElement
}

func NewKeysetToken(elements ...TokenElement) *KeysetToken {
	return &KeysetToken{elements: elements}
}

// DecodeKeysetToken parses a string produced by KeysetToken.String.
// An empty string decodes to an empty token.
func DecodeKeysetToken(raw string) (*KeysetToken, error) {
	if raw == "" {
		return &KeysetToken{}, nil
	}

	jsonData, err := _encoder.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 encoded keyset token: %w", err)
	}

	var elements []TokenElement
	if err = json.Unmarshal(jsonData, &elements); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json encoded keyset token: %w", err)
	}

	return &KeysetToken{elements: elements}, nil
}

// String - implements fmt.Stringer.
func (t *KeysetToken) String() string {
	if t.IsEmpty() {
		return ""
	}

	raw, err := json.Marshal(t.elements)
	if err != nil {
		panic(fmt.Errorf("cannot marshal keyset token: %w", err))
	}

	var buf bytes.Buffer
	if err = json.Compact(&buf, raw); err != nil {
		panic(fmt.Errorf("cannot compact keyset token: %w", err))
	}

	return _encoder.EncodeToString(buf.Bytes())
}

func (t *KeysetToken) IsEmpty() bool {
	return t == nil || len(t.elements) == 0
}

func (t *KeysetToken) Elements() []TokenElement {
	if t == nil {
		return nil
	}

	return t.elements
}

// Apply adds the token filter to a gorm query.
func (t *KeysetToken) Apply(db *gorm.DB) *gorm.DB {
	exp := t.expression()
	if exp == nil {
		return db
	}

	return db.Clauses(exp)
}

// expression expands the token into its OR-of-ANDs filter.
func (t *KeysetToken) expression() clause.Expression {
	if t.IsEmpty() {
		return nil
	}

	disjuncts := make([]clause.Expression, 0, len(t.elements))
	for i, element := range t.elements {
		conjuncts := lo.Map(t.elements[:i], func(prev TokenElement, _ int) clause.Expression {
			return condition(prev.Column, operatorEq, prev.Value)
		})
		conjuncts = append(conjuncts, condition(element.Column, element.Operator, element.Value))

		if len(conjuncts) == 1 {
			disjuncts = append(disjuncts, conjuncts[0])
		} else {
			disjuncts = append(disjuncts, clause.And(conjuncts...))
		}
	}

	if len(disjuncts) == 1 {
		return disjuncts[0]
	}

	return clause.Or(disjuncts...)
}

func condition(column string, op Operator, value any) clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", column, op),
		Vars: []any{normalizeValue(value)},
	}
}

// validate checks that the token continues exactly the given orderings.
func (t *KeysetToken) validate(orderings Orderings) error {
	if t.IsEmpty() {
		return nil
	}

	if len(t.elements) != len(orderings) {
		return fmt.Errorf("keyset token column number mismatch")
	}

	for i, element := range t.elements {
		orderBy := orderings[i]

		if element.Column != orderBy.Column {
			return fmt.Errorf("unexpected keyset token column '%s'", element.Column)
		}

		if !element.Operator.Valid() {
			return fmt.Errorf("invalid keyset token operator '%s'", element.Operator)
		} else if element.Operator.ForOrdering() != orderBy.Direction {
			return fmt.Errorf("unexpected keyset token operator '%s'", element.Operator)
		}
	}

	return nil
}

// normalizeValue restores values that lose their type in the JSON round trip:
// timestamps come back as strings and integers as float64.
func normalizeValue(v any) any {
	parseTimeOrValue := func(raw []byte, fallback any) any {
		var ts time.Time
		if err := ts.UnmarshalText(raw); err == nil {
			return ts
		}

		return fallback
	}

	switch vt := v.(type) {
	case string:
		return parseTimeOrValue([]byte(vt), vt)
	case []byte:
		return parseTimeOrValue(vt, vt)
	case float64:
		if vt == math.Trunc(vt) && math.Abs(vt) < 1<<53 {
			return int64(vt)
		}

		return vt
	default:
		return v
	}
}
