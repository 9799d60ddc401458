package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"roomrec-server/models"
	"roomrec-server/recommender"
	services "roomrec-server/service"
	"roomrec-server/util"
)

const (
	START_QUERY_ARG = "start"
	END_QUERY_ARG   = "end"
	ROOM_NAME_VAR   = "room_name"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// SnapshotRefresher rebuilds the room data snapshot on demand.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*recommender.Snapshot, error)
}

type RoomHandler struct {
	roomService *services.RoomService
	refresher   SnapshotRefresher
	logger      *log.Logger
}

func NewRoomHandler(roomService *services.RoomService, refresher SnapshotRefresher, logger *log.Logger) *RoomHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &RoomHandler{
		roomService: roomService,
		refresher:   refresher,
		logger:      logger.WithPrefix("RoomHandler"),
	}
}

// Recommend handles POST /v1/recommend.
func (h *RoomHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return
	}
	if _, err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.roomService.Recommend(req)
	if err != nil {
		h.serviceError(w, "recommend", err)
		return
	}
	if res.Empty() {
		writeJSON(w, http.StatusNotFound, models.NoMatchResponse{
			Error:                 res.Detail.Message(),
			Reason:                string(res.Reason),
			Detail:                string(res.Detail),
			AvailableTemperatures: res.AvailableTemperatures,
		})
		return
	}
	writeJSON(w, http.StatusOK, models.RecommendationResponse{Rooms: res.Rooms, SnapshotID: res.SnapshotID})
}

// ListRooms handles GET /v1/rooms.
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.ListRooms()
	if err != nil {
		h.serviceError(w, "list rooms", err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// RoomsWithMetrics handles GET /v1/rooms/metrics.
func (h *RoomHandler) RoomsWithMetrics(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomService.RoomsWithMetrics()
	if err != nil {
		h.serviceError(w, "rooms with metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// CalendarEvents handles GET /v1/calendar/events?start=...&end=...
func (h *RoomHandler) CalendarEvents(w http.ResponseWriter, r *http.Request) {
	vals := r.URL.Query()
	startArg, endArg := vals.Get(START_QUERY_ARG), vals.Get(END_QUERY_ARG)
	if startArg == "" || endArg == "" {
		writeError(w, http.StatusBadRequest, "Missing start or end parameters")
		return
	}
	start, err := models.ParseTimestamp(startArg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument "+START_QUERY_ARG)
		return
	}
	end, err := models.ParseTimestamp(endArg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid argument "+END_QUERY_ARG)
		return
	}

	events, err := h.roomService.CalendarEvents(start, end)
	if err != nil {
		h.serviceError(w, "calendar events", err)
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusNotFound, "No events found for the specified time range")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// RoomChart handles GET /v1/rooms/{room_name}/chart with an HTML line chart.
func (h *RoomHandler) RoomChart(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)[ROOM_NAME_VAR]
	readings, err := h.roomService.RoomReadings(room)
	if err != nil {
		h.serviceError(w, "room chart", err)
		return
	}

	var buf bytes.Buffer
	if err := util.RenderRoomMetricsChart(&buf, room, readings); err != nil {
		h.logger.Error("failed to render chart", "room", room, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Snapshot handles GET /v1/snapshot.
func (h *RoomHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	info, err := h.roomService.SnapshotInfo()
	if err != nil {
		h.serviceError(w, "snapshot info", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RefreshSnapshot handles POST /v1/snapshot/refresh.
func (h *RoomHandler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.refresher.Refresh(r.Context())
	if err != nil {
		h.logger.Error("manual refresh failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to refresh room data")
		return
	}
	writeJSON(w, http.StatusOK, snap.Info())
}

// Ping handles GET /ping
func (h *RoomHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}

func (h *RoomHandler) serviceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, recommender.ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "Room data is not loaded yet")
	case errors.Is(err, services.ErrNoRoomData):
		writeError(w, http.StatusNotFound, "No room data available")
	case errors.Is(err, services.ErrNoSensorData):
		writeError(w, http.StatusNotFound, "No sensor data available")
	case errors.Is(err, models.ErrInvalidTimeSlot), errors.Is(err, models.ErrInvalidTemperature):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
