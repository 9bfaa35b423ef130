package spec

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Filter transforms a query in ways too structural for a flat field
// predicate, typically joins against related tables. Filters apply by
// sequential left-fold.
type Filter interface {
	SetFilter(tx *gorm.DB) *gorm.DB
}

// likeEscaper escapes the escape character and both LIKE metacharacters in
// a user-supplied term.
var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// EscapeLike escapes LIKE wildcards in term and wraps it with % so the
// resulting pattern is a literal contains match.
func EscapeLike(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Apply lowers the specifications onto tx as conjoined WHERE clauses. An
// unbound value or a kind the translator has no lowering for fails the
// whole query.
func Apply(tx *gorm.DB, specs []*Field) (*gorm.DB, error) {
	for _, f := range specs {
		v, err := f.Value()
		if err != nil {
			return nil, err
		}

		switch f.kind {
		case KindEquals:
			tx = tx.Where(f.field+" = ?", v)
		case KindNotEquals:
			tx = tx.Where(f.field+" <> ?", v)
		case KindGreaterThan:
			tx = tx.Where(f.field+" > ?", v)
		case KindLessThan:
			tx = tx.Where(f.field+" < ?", v)
		case KindGreaterOrEqual:
			tx = tx.Where(f.field+" >= ?", v)
		case KindLessOrEqual:
			tx = tx.Where(f.field+" <= ?", v)
		case KindInList:
			tx = tx.Where(f.field+" IN ?", v)
		case KindNotInList:
			tx = tx.Where(f.field+" NOT IN ?", v)
		case KindSubList, KindNotSubList:
			members, err := toSlice(v)
			if err != nil {
				return nil, fmt.Errorf("%s(%s): %w", f.kind, f.field, err)
			}
			tx = applySubList(tx, f, members)
		case KindLike, KindNotLike, KindILike, KindNotILike:
			term, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%s(%s): bound value must be a string", f.kind, f.field)
			}
			insensitive := f.kind == KindILike || f.kind == KindNotILike
			negated := f.kind == KindNotLike || f.kind == KindNotILike
			tx = tx.Where(likeFragment(dialect(tx), f.field, insensitive, negated), EscapeLike(term))
		case KindIsNone, KindIsNotNone:
			flag, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%s(%s): bound value must be a bool", f.kind, f.field)
			}
			wantNull := flag
			if f.kind == KindIsNotNone {
				wantNull = !flag
			}
			if wantNull {
				tx = tx.Where(f.field + " IS NULL")
			} else {
				tx = tx.Where(f.field + " IS NOT NULL")
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownKind, f.kind)
		}
	}
	return tx, nil
}

// applySubList expands subset containment into a disjunction of equality
// checks. An empty wanted set matches nothing for SubList (and everything
// for its negation), matching how the disjunction of zero terms lowers.
func applySubList(tx *gorm.DB, f *Field, members []any) *gorm.DB {
	if len(members) == 0 {
		if f.kind == KindSubList {
			return tx.Where("1 = 0")
		}
		return tx
	}
	terms := make([]string, len(members))
	for i := range members {
		terms[i] = f.field + " = ?"
	}
	cond := strings.Join(terms, " OR ")
	if f.kind == KindNotSubList {
		return tx.Where("NOT ("+cond+")", members...)
	}
	return tx.Where(cond, members...)
}

// ApplySort appends ORDER BY clauses in the order the sorts were given.
func ApplySort(tx *gorm.DB, sorts []*Sort) (*gorm.DB, error) {
	for _, s := range sorts {
		d, err := s.Direction()
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if d == Descending {
			dir = "DESC"
		}
		tx = tx.Order(s.field + " " + dir)
	}
	return tx, nil
}

// ApplyFilters folds the filters onto tx left to right.
func ApplyFilters(tx *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		tx = f.SetFilter(tx)
	}
	return tx
}

func dialect(tx *gorm.DB) string {
	if tx.Dialector == nil {
		return ""
	}
	return tx.Dialector.Name()
}

// likeFragment renders the dialect-appropriate LIKE condition. Postgres has
// native ILIKE and treats backslash as the default escape; mysql defaults
// to backslash escaping too; sqlite needs an explicit ESCAPE clause and its
// LIKE is already case-insensitive for ASCII.
func likeFragment(dialect, field string, insensitive, negated bool) string {
	not := ""
	if negated {
		not = "NOT "
	}
	switch dialect {
	case "postgres":
		op := "LIKE"
		if insensitive {
			op = "ILIKE"
		}
		return fmt.Sprintf("%s %s%s ?", field, not, op)
	case "mysql":
		if insensitive {
			return fmt.Sprintf("LOWER(%s) %sLIKE LOWER(?)", field, not)
		}
		return fmt.Sprintf("%s %sLIKE ?", field, not)
	default:
		if insensitive {
			return fmt.Sprintf("LOWER(%s) %sLIKE LOWER(?) ESCAPE '\\'", field, not)
		}
		return fmt.Sprintf("%s %sLIKE ? ESCAPE '\\'", field, not)
	}
}
