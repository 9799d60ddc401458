package roomrec

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrec-server/api"
	"roomrec-server/models"
)

func setupClient(t *testing.T, handler http.HandlerFunc) *RoomRecClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	httpClient := api.NewHTTPClient(server.URL)
	httpClient.Delay = time.Millisecond
	return NewRoomRecClient(httpClient)
}

func TestRoomRecClient_Recommend(t *testing.T) {
	// Setup
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, RECOMMEND_ENDPOINT, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_, err := uuid.Parse(r.Header.Get(REQUEST_ID_HEADER))
		assert.NoError(t, err)

		var req models.RecommendationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "08:00-09:00", req.TimeSlot)

		json.NewEncoder(w).Encode(models.RecommendationResponse{
			Rooms:      []models.RankedRoom{{RoomName: "RoomA", Rank: 1, Score: 90.125}},
			SnapshotID: "snap-1",
		})
	})
	temp := 22.0

	// Act
	resp, err := client.Recommend(context.Background(), models.RecommendationRequest{Temperature: &temp, TimeSlot: "08:00-09:00"})

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, "RoomA", resp.Rooms[0].RoomName)
	assert.Equal(t, "snap-1", resp.SnapshotID)
}

func TestRoomRecClient_RecommendNoMatch(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(models.NoMatchResponse{
			Error:                 "The preferred temperature is outside the acceptable range.",
			Reason:                "preferences",
			Detail:                "temperature_out_of_range",
			AvailableTemperatures: []float64{21, 22.5},
		})
	})
	temp := 35.0

	_, err := client.Recommend(context.Background(), models.RecommendationRequest{Temperature: &temp, TimeSlot: "08:00-09:00"})

	var nm *NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.Equal(t, "temperature_out_of_range", nm.Detail)
	assert.Equal(t, []float64{21, 22.5}, nm.AvailableTemperatures)
}

func TestRoomRecClient_RecommendBadRequest(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid time slot"}`))
	})
	temp := 22.0

	_, err := client.Recommend(context.Background(), models.RecommendationRequest{Temperature: &temp, TimeSlot: "8-9"})

	require.Error(t, err)
	var nm *NoMatchError
	assert.False(t, errors.As(err, &nm))
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestRoomRecClient_ListRoomsAndRefresh(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ROOMS_ENDPOINT:
			json.NewEncoder(w).Encode([]models.RoomSummary{{RoomName: "RoomA", TimeSlot: "08:00-09:00", FacilitiesScore: 31}})
		case SNAPSHOT_REFRESH_ENDPOINT:
			assert.Equal(t, http.MethodPost, r.Method)
			json.NewEncoder(w).Encode(models.SnapshotInfo{ID: "snap-2", Readings: 4})
		case PING_ENDPOINT:
			w.Write([]byte(`{"status":"pong"}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	rooms, err := client.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31.0, rooms[0].FacilitiesScore)

	info, err := client.RefreshSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "snap-2", info.ID)
	assert.Equal(t, 4, info.Readings)

	assert.NoError(t, client.Ping(ctx))
}
