package system

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
)

func TestService_GetByKey(t *testing.T) {
	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	sys, err := s.GetByKey("Weathering.MapOfStarSystem#=1,4=14,93")
	require.NoError(t, err)
	assert.Equal(t, Orange, sys.StarType)
	assert.True(t, sys.Binary())
	assert.True(t, sys.IsStar(mapkey.Coord{X: 16, Y: 10}))

	_, err = s.GetByKey("Weathering.MapOfStarSystem#=1,4")
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))

	_, err = s.GetByKey("Weathering.MapOfStarSystem#=1,4=0,0")
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = s.ListInGalaxy(mapkey.Coord{X: 0, Y: 0})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))
}
