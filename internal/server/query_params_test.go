package server

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

func TestParseUUIDList(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	t.Run("Repeated", func(t *testing.T) {
		ids, err := parseUUIDList([]string{a.String(), b.String()})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b}, ids)
	})

	t.Run("CommaSeparated", func(t *testing.T) {
		ids, err := parseUUIDList([]string{a.String() + "," + b.String()})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b}, ids)
	})

	t.Run("MixedForms", func(t *testing.T) {
		ids, err := parseUUIDList([]string{a.String() + ", " + b.String(), c.String()})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a, b, c}, ids)
	})

	t.Run("BlankPartsSkipped", func(t *testing.T) {
		ids, err := parseUUIDList([]string{"", " ", a.String() + ",,"})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{a}, ids)
	})

	t.Run("BadValue", func(t *testing.T) {
		_, err := parseUUIDList([]string{a.String() + ",nope"})
		assert.ErrorContains(t, err, `invalid uuid "nope"`)
	})
}

func TestParseSorts(t *testing.T) {
	t.Run("EmptyIsNil", func(t *testing.T) {
		sorts, err := parseSorts("", "name")
		require.NoError(t, err)
		assert.Nil(t, sorts)
	})

	t.Run("AscendingByDefault", func(t *testing.T) {
		sorts, err := parseSorts("name", "name", "created_at")
		require.NoError(t, err)
		require.Len(t, sorts, 1)
		assert.Equal(t, "name", sorts[0].Field())

		direction, err := sorts[0].Direction()
		require.NoError(t, err)
		assert.Equal(t, spec.Ascending, direction)
	})

	t.Run("MinusPrefixDescends", func(t *testing.T) {
		sorts, err := parseSorts("-created_at, name", "name", "created_at")
		require.NoError(t, err)
		require.Len(t, sorts, 2)
		assert.Equal(t, "created_at", sorts[0].Field())

		direction, err := sorts[0].Direction()
		require.NoError(t, err)
		assert.Equal(t, spec.Descending, direction)

		direction, err = sorts[1].Direction()
		require.NoError(t, err)
		assert.Equal(t, spec.Ascending, direction)
	})

	t.Run("UnknownFieldRejected", func(t *testing.T) {
		_, err := parseSorts("name,secret", "name")
		assert.ErrorContains(t, err, `unknown sort field "secret"`)
	})

	t.Run("AllowListIsPerCall", func(t *testing.T) {
		_, err := parseSorts("address", "name", "created_at")
		assert.Error(t, err)

		sorts, err := parseSorts("address", "address", "created_at")
		require.NoError(t, err)
		assert.Equal(t, "address", sorts[0].Field())
	})
}

func TestParseOptionalScalars(t *testing.T) {
	t.Run("EmptyFloatIsNil", func(t *testing.T) {
		value, err := parseOptionalFloat("  ")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("Float", func(t *testing.T) {
		value, err := parseOptionalFloat("54.98")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.InDelta(t, 54.98, *value, 1e-9)
	})

	t.Run("BadFloat", func(t *testing.T) {
		_, err := parseOptionalFloat("north")
		assert.Error(t, err)
	})

	t.Run("EmptyUUIDIsNil", func(t *testing.T) {
		value, err := parseOptionalUUID("")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("UUID", func(t *testing.T) {
		id := uuid.New()
		value, err := parseOptionalUUID(id.String())
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, id, *value)
	})

	t.Run("BadUUID", func(t *testing.T) {
		_, err := parseOptionalUUID("nope")
		assert.Error(t, err)
	})
}

func TestPageResponse(t *testing.T) {
	page := pagination.NewPage([]string{"a", "b"}, 5, pagination.Request{Page: 1, PerPage: 2})
	resp := pageResponse(&page)
	assert.Equal(t, []string{"a", "b"}, resp.Items)
	assert.Equal(t, int64(5), resp.TotalItems)
	assert.Equal(t, 3, resp.TotalPages)

	t.Run("NilItemsBecomeEmptySlice", func(t *testing.T) {
		empty := pagination.NewPage[string](nil, 0, pagination.Request{Page: 1, PerPage: 10})
		resp := pageResponse(&empty)
		assert.NotNil(t, resp.Items)
		assert.Len(t, resp.Items, 0)
		assert.Equal(t, 0, resp.TotalPages)
	})
}
