package request

import (
	"net/http/httptest"
	"testing"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathCoord(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/galaxies/1/4", nil)
	r.SetPathValue("gx", "1")
	r.SetPathValue("gy", "4")

	c, err := PathCoord(r, "gx", "gy")
	require.NoError(t, err)
	assert.Equal(t, mapkey.Coord{X: 1, Y: 4}, c)

	r.SetPathValue("gy", "-4")
	_, err = PathCoord(r, "gx", "gy")
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=20&desc=true&offset=x", nil)

	limit, err := QueryIntDefault(r, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	missing, err := QueryIntDefault(r, "tile", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, missing)

	_, _, err = QueryInt(r, "offset")
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	desc, err := QueryBool(r, "desc")
	require.NoError(t, err)
	assert.True(t, desc)

	_, err = RequireKey(r)
	assert.Error(t, err)
}
