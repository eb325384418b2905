package gopaginator

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Direction is the sort direction of a single column.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (d Direction) Valid() bool {
	return d == DirectionASC || d == DirectionDESC
}

// ForOperator returns the operator that selects rows after a given value
// when sorting in direction d.
func (d Direction) ForOperator() Operator {
	switch d {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", d))
	}
}

type (
	// Orderings is a multi-column sort. Keyset pagination requires its last
	// column to be unique.
	Orderings []OrderBy
	OrderBy   struct {
		Column    string
		Direction Direction
	}

	ColumnAlias = string

	// ColumnMapping maps aliases accepted from callers to the column names
	// used in queries. Use qualified names to avoid "ambiguous column" errors.
	ColumnMapping = map[ColumnAlias]string
)

var _allowedColumnSymbols = append([]rune("_.'`\""), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	// Column names end up in raw SQL.
	if o.Column == "" || !lo.Every(_allowedColumnSymbols, []rune(o.Column)) {
		return fmt.Errorf("ordering column name contains forbidden symbols '%s'", o.Column)
	}

	return nil
}

// ToSQL renders the orderings as an ORDER BY list.
//
// Example: [{"a", "ASC"}, {"b", "DESC"}] -> "a ASC, b DESC".
func (o Orderings) ToSQL() string {
	return strings.Join(lo.Map(o, func(ordering OrderBy, _ int) string {
		return fmt.Sprintf("%s %s", ordering.Column, ordering.Direction)
	}), ", ")
}

// Apply adds the ORDER BY clause to a gorm query.
func (o Orderings) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.ToSQL())
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	for _, ordering := range o {
		if err := ordering.validate(); err != nil {
			return err
		}
	}

	duplicates := lo.FindDuplicates(lo.Map(o, func(ordering OrderBy, _ int) string {
		return ordering.Column
	}))
	if len(duplicates) > 0 {
		return fmt.Errorf("duplicate ordering column '%s'", duplicates[0])
	}

	return nil
}

// ParseSort builds Orderings from strings of the form "alias asc|desc".
// Unknown aliases are reported together with the closest known one.
func ParseSort(sort []string, columnMapping ColumnMapping) (Orderings, error) {
	ret := make(Orderings, 0, len(sort))
	aliases := lo.Keys(columnMapping)

	for _, raw := range sort {
		fields := strings.Fields(raw)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid ordering string format '%s'", raw)
		}

		direction := Direction(strings.ToUpper(fields[1]))
		if !direction.Valid() {
			return nil, fmt.Errorf("invalid ordering direction '%s'", fields[1])
		}

		column, ok := columnMapping[fields[0]]
		if !ok || column == "" {
			return nil, fmt.Errorf("invalid column alias '%s'. closest: '%s'", fields[0], closestAlias(fields[0], aliases))
		}

		ret = append(ret, OrderBy{
			Column:    column,
			Direction: direction,
		})
	}

	return ret, nil
}

func closestAlias(input ColumnAlias, aliases []ColumnAlias) ColumnAlias {
	minDist := math.MaxInt
	closest := ""

	for _, alias := range aliases {
		dist := levenshtein([]rune(alias), []rune(input))
		if dist < minDist || (dist == minDist && alias < closest) {
			minDist = dist
			closest = alias
		}
	}

	return closest
}
