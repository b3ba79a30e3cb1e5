package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls int
	coord Coordinates
	err   error
}

func (g *countingGeocoder) Geocode(ctx context.Context, address string) (Coordinates, error) {
	g.calls++
	if g.err != nil {
		return Coordinates{}, g.err
	}
	return g.coord, nil
}

func TestCachedGeocoderNormalizesKeys(t *testing.T) {
	t.Parallel()

	inner := &countingGeocoder{coord: Coordinates{Latitude: 59.33, Longitude: 18.07}}
	cached, err := NewCachedGeocoder(inner)
	require.NoError(t, err)

	variants := []string{
		"Storgatan 1, Stockholm",
		"storgatan 1,  stockholm",
		"  STORGATAN 1, STOCKHOLM ",
		"storgatan\t1, stockholm",
	}

	for _, address := range variants {
		coords, err := cached.Geocode(context.Background(), address)
		require.NoError(t, err)
		require.Equal(t, inner.coord, coords)
	}

	require.Equal(t, 1, inner.calls, "all spelling variants must share one lookup")
}

func TestCachedGeocoderDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	inner := &countingGeocoder{err: errors.New("geocoder down")}
	cached, err := NewCachedGeocoder(inner)
	require.NoError(t, err)

	_, err = cached.Geocode(context.Background(), "somewhere")
	require.Error(t, err)

	inner.err = nil
	inner.coord = Coordinates{Latitude: 1, Longitude: 2}

	coords, err := cached.Geocode(context.Background(), "somewhere")
	require.NoError(t, err)
	require.Equal(t, inner.coord, coords)
	require.Equal(t, 2, inner.calls)
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Storgatan 1", "storgatan 1"},
		{"  a   B  c ", "a b c"},
		{"", ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeAddress(tt.in))
	}
}
