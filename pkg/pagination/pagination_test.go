package pagination

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPageMetadata(t *testing.T) {
	page := NewPage(make([]int, 10), 25, Request{Page: 1, PerPage: 10})
	assert.Equal(t, 3, page.Pages())
	assert.False(t, page.HasPrev())
	assert.True(t, page.HasNext())

	middle := NewPage(make([]int, 10), 25, Request{Page: 2, PerPage: 10})
	assert.True(t, middle.HasPrev())
	assert.True(t, middle.HasNext())

	last := NewPage(make([]int, 5), 25, Request{Page: 3, PerPage: 10})
	assert.Equal(t, 3, last.Pages())
	assert.True(t, last.HasPrev())
	assert.False(t, last.HasNext())
}

func TestPageExactMultiple(t *testing.T) {
	page := NewPage(make([]int, 10), 30, Request{Page: 3, PerPage: 10})
	assert.Equal(t, 3, page.Pages())
	assert.False(t, page.HasNext())
}

func TestPageEmpty(t *testing.T) {
	page := NewPage([]int{}, 0, Request{Page: 1, PerPage: 10})
	assert.Equal(t, 0, page.Pages())
	assert.False(t, page.HasPrev())
	assert.False(t, page.HasNext())
}

// PerPage 0 means no limit: one page holding everything.
func TestPageUnlimited(t *testing.T) {
	page := NewPage(make([]int, 25), 25, All())
	assert.Equal(t, 1, page.Pages())
	assert.False(t, page.HasNext())

	empty := NewPage([]int{}, 0, All())
	assert.Equal(t, 0, empty.Pages())
}

type row struct {
	ID int
}

func builtSQL(t *testing.T, r Request) string {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}

	var out []row
	return r.Apply(db.Model(&row{})).Find(&out).Statement.SQL.String()
}

func TestRequestApply(t *testing.T) {
	sql := builtSQL(t, Request{Page: 3, PerPage: 10})
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")

	sql = builtSQL(t, Request{Page: 1, PerPage: 10})
	assert.Contains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "OFFSET")

	sql = builtSQL(t, Request{Page: 0, PerPage: 10})
	assert.NotContains(t, sql, "OFFSET", "page below 1 clamps to the first page")

	sql = builtSQL(t, All())
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "OFFSET")
}
