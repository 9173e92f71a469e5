package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/types"
)

var (
	berlinHbf  = types.Point{Lat: 52.5251, Lng: 13.3694}
	alexPlatz  = types.Point{Lat: 52.5219, Lng: 13.4132}
	ostbahnhof = types.Point{Lat: 52.5108, Lng: 13.4348}
)

func TestStraightLineRouter_LegsAlignWithWaypoints(t *testing.T) {
	r := NewStraightLineRouter(10)
	route, err := r.Directions(context.Background(), []types.Point{berlinHbf, alexPlatz, ostbahnhof})
	require.NoError(t, err)

	require.Len(t, route.Legs, 2)
	assert.Equal(t, route.Legs[0].DistanceMeters+route.Legs[1].DistanceMeters, route.DistanceMeters)
	assert.Equal(t, route.Legs[0].DurationSeconds+route.Legs[1].DurationSeconds, route.DurationSeconds)
	assert.Equal(t, types.Polyline{berlinHbf, alexPlatz, ostbahnhof}, route.Geometry)
	assert.InDelta(t, float64(route.Legs[0].DistanceMeters)/10, route.Legs[0].DurationSeconds, 1)
}

func TestStraightLineRouter_RejectsSingleWaypoint(t *testing.T) {
	_, err := NewStraightLineRouter(10).Directions(context.Background(), []types.Point{berlinHbf})
	require.Error(t, err)
}

func TestOSRMRouter_ParsesRoute(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 4210.4,
				"duration": 612.6,
				"geometry": {"type": "LineString", "coordinates": [[13.3694, 52.5251], [13.4132, 52.5219], [13.4348, 52.5108]]},
				"legs": [{"distance": 3000.2, "duration": 400.1}, {"distance": 1210.2, "duration": 212.5}]
			}]
		}`))
	}))
	defer srv.Close()

	r := NewOSRMRouter(srv.URL + "/")
	route, err := r.Directions(context.Background(), []types.Point{berlinHbf, alexPlatz, ostbahnhof})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/route/v1/driving/13.369400,52.525100;"), gotPath)
	assert.Equal(t, 4210, route.DistanceMeters)
	assert.Equal(t, 613, route.DurationSeconds)
	require.Len(t, route.Geometry, 3)
	assert.Equal(t, types.Point{Lat: 52.5251, Lng: 13.3694}, route.Geometry[0])
	require.Len(t, route.Legs, 2)
	assert.Equal(t, Leg{DistanceMeters: 3000, DurationSeconds: 400}, route.Legs[0])
}

func TestOSRMRouter_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "NoRoute", "message": "Impossible route between points"}`))
	}))
	defer srv.Close()

	_, err := NewOSRMRouter(srv.URL).Directions(context.Background(), []types.Point{berlinHbf, alexPlatz})
	require.ErrorIs(t, err, ErrNoRoute)
}

func TestOSRMRouter_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	_, err := NewOSRMRouter(srv.URL).Directions(context.Background(), []types.Point{berlinHbf, alexPlatz})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRoute)
}
