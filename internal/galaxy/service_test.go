package galaxy

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planetinfo-server/internal/mapkey"
	"planetinfo-server/internal/shared/errors"
)

func newTestService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_Get(t *testing.T) {
	s := newTestService()

	g, err := s.Get(mapkey.Coord{X: 1, Y: 4})
	require.NoError(t, err)
	assert.Equal(t, "Weathering.MapOfGalaxy#=1,4", g.MapKey)

	_, err = s.Get(mapkey.Coord{X: 0, Y: 0})
	assert.Equal(t, errors.ErrorTypeNotFound, errors.GetType(err))

	_, err = s.Get(mapkey.Coord{X: 100, Y: 0})
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
}
