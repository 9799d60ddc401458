package roomrec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"roomrec-server/api"
	"roomrec-server/models"
)

const (
	RECOMMEND_ENDPOINT        = "/v1/recommend"
	ROOMS_ENDPOINT            = "/v1/rooms"
	SNAPSHOT_REFRESH_ENDPOINT = "/v1/snapshot/refresh"
	PING_ENDPOINT             = "/ping"

	REQUEST_ID_HEADER = "X-Request-Id"
)

// NoMatchError is returned by Recommend when the server found no room; it carries the
// server's explanation.
type NoMatchError struct {
	models.NoMatchResponse
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no matching rooms (%s/%s): %s", e.Reason, e.Detail, e.NoMatchResponse.Error)
}

// RoomRecClient talks to a running room recommendation server.
type RoomRecClient struct {
	client *api.HTTPClient
}

func NewRoomRecClient(client *api.HTTPClient) *RoomRecClient {
	return &RoomRecClient{client: client}
}

// Recommend posts req. An empty recommendation comes back as a *NoMatchError.
func (c *RoomRecClient) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error) {
	var resp models.RecommendationResponse
	err := c.client.Request(ctx, http.MethodPost, RECOMMEND_ENDPOINT, requestHeaders(), req, &resp)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			var nm models.NoMatchResponse
			if jsonErr := json.Unmarshal(se.Body, &nm); jsonErr == nil && nm.Reason != "" {
				return nil, &NoMatchError{NoMatchResponse: nm}
			}
		}
		return nil, fmt.Errorf("recommend request failed: %w", err)
	}
	return &resp, nil
}

func (c *RoomRecClient) ListRooms(ctx context.Context) ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	if err := c.client.Request(ctx, http.MethodGet, ROOMS_ENDPOINT, requestHeaders(), nil, &rooms); err != nil {
		return nil, fmt.Errorf("list rooms request failed: %w", err)
	}
	return rooms, nil
}

// RefreshSnapshot asks the server to reload its room data now.
func (c *RoomRecClient) RefreshSnapshot(ctx context.Context) (*models.SnapshotInfo, error) {
	var info models.SnapshotInfo
	if err := c.client.Request(ctx, http.MethodPost, SNAPSHOT_REFRESH_ENDPOINT, requestHeaders(), nil, &info); err != nil {
		return nil, fmt.Errorf("snapshot refresh request failed: %w", err)
	}
	return &info, nil
}

func (c *RoomRecClient) Ping(ctx context.Context) error {
	return c.client.Request(ctx, http.MethodGet, PING_ENDPOINT, requestHeaders(), nil, nil)
}

func requestHeaders() map[string]string {
	return map[string]string{REQUEST_ID_HEADER: uuid.NewString()}
}
