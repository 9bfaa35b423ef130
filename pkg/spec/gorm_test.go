package spec

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type widget struct {
	ID       int
	Name     string
	Level    int
	ParentID *int
	Tags     string
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func buildSQL(t *testing.T, db *gorm.DB, specs []*Field) (string, []any) {
	t.Helper()
	tx, err := Apply(db.Model(&widget{}), specs)
	if err != nil {
		t.Fatal(err)
	}
	var out []widget
	stmt := tx.Find(&out).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestApplyComparisons(t *testing.T) {
	db := dryRunDB(t)

	sql, vars := buildSQL(t, db, []*Field{
		Equals("name").WithValue("x"),
		GreaterOrEqual("level").WithValue(2),
		InList("id").WithValue([]int{1, 2}),
	})

	assert.Contains(t, sql, "name = ?")
	assert.Contains(t, sql, "level >= ?")
	assert.Contains(t, sql, "id IN")
	assert.Contains(t, vars, "x")
	assert.Contains(t, vars, 2)
}

func TestApplyILikeEscapesWildcards(t *testing.T) {
	db := dryRunDB(t)

	sql, vars := buildSQL(t, db, []*Field{ILike("name").WithValue("50%_off")})

	assert.Contains(t, sql, `LOWER(name) LIKE LOWER(?) ESCAPE '\'`)
	assert.Contains(t, vars, `%50\%\_off%`)
}

func TestApplySubListLowersToDisjunction(t *testing.T) {
	db := dryRunDB(t)

	sql, vars := buildSQL(t, db, []*Field{SubList("tags").WithValue([]string{"a", "b"})})
	assert.Contains(t, sql, "tags = ? OR tags = ?")
	assert.Equal(t, []any{"a", "b"}, vars)

	sql, _ = buildSQL(t, db, []*Field{NotSubList("tags").WithValue([]string{"a"})})
	assert.Contains(t, sql, "NOT (tags = ?)")
}

// The disjunction of zero terms is false, so an empty SubList matches no
// rows at the query layer while its negation is a no-op.
func TestApplyEmptySubList(t *testing.T) {
	db := dryRunDB(t)

	sql, _ := buildSQL(t, db, []*Field{SubList("tags").WithValue([]string{})})
	assert.Contains(t, sql, "1 = 0")

	sql, _ = buildSQL(t, db, []*Field{NotSubList("tags").WithValue([]string{})})
	assert.NotContains(t, sql, "1 = 0")
	assert.NotContains(t, sql, "tags")
}

func TestApplyNullChecks(t *testing.T) {
	db := dryRunDB(t)

	sql, _ := buildSQL(t, db, []*Field{IsNone("parent_id").WithValue(true)})
	assert.Contains(t, sql, "parent_id IS NULL")

	sql, _ = buildSQL(t, db, []*Field{IsNone("parent_id").WithValue(false)})
	assert.Contains(t, sql, "parent_id IS NOT NULL")

	sql, _ = buildSQL(t, db, []*Field{IsNotNone("parent_id").WithValue(false)})
	assert.Contains(t, sql, "parent_id IS NULL")
}

func TestApplyUnboundValueFails(t *testing.T) {
	db := dryRunDB(t)

	_, err := Apply(db.Model(&widget{}), []*Field{Equals("name")})
	assert.ErrorIs(t, err, ErrUnboundValue)
}

func TestApplyUnknownKindFails(t *testing.T) {
	db := dryRunDB(t)

	bogus := &Field{kind: Kind(42), field: "x", value: BoundValue(1)}
	_, err := Apply(db.Model(&widget{}), []*Field{bogus})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestApplySort(t *testing.T) {
	db := dryRunDB(t)

	tx, err := ApplySort(db.Model(&widget{}), []*Sort{
		SortBy("name").WithDirection(Ascending),
		SortBy("level").WithDirection(Descending),
	})
	assert.NoError(t, err)

	var out []widget
	sql := tx.Find(&out).Statement.SQL.String()
	assert.Contains(t, sql, "name ASC")
	assert.Contains(t, sql, "level DESC")

	_, err = ApplySort(db.Model(&widget{}), []*Sort{SortBy("name")})
	assert.ErrorIs(t, err, ErrUnboundValue)
}

func TestLikeFragmentPerDialect(t *testing.T) {
	assert.Equal(t, "name ILIKE ?", likeFragment("postgres", "name", true, false))
	assert.Equal(t, "name NOT LIKE ?", likeFragment("postgres", "name", false, true))
	assert.Equal(t, "LOWER(name) LIKE LOWER(?)", likeFragment("mysql", "name", true, false))
	assert.Equal(t, `name LIKE ? ESCAPE '\'`, likeFragment("sqlite", "name", false, false))
	assert.Equal(t, `LOWER(name) NOT LIKE LOWER(?) ESCAPE '\'`, likeFragment("sqlite", "name", true, true))
}
