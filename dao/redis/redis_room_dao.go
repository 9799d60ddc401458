package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"roomrec-server/db"
	"roomrec-server/models"
)

const AGENDA_KEY_V1 = "agenda_v1"
const FACILITY_KEY_FORMAT_V1 = "facility_v1:%s"

// SENSOR_READINGS_KEY_FORMAT_V1 holds one list of JSON readings per room, oldest first.
const SENSOR_READINGS_KEY_FORMAT_V1 = "sensor_readings_v1:%s"

// DEFAULT_MAX_READINGS_PER_ROOM bounds each room's reading list when no maximum is given.
const DEFAULT_MAX_READINGS_PER_ROOM = 10000

// RedisRoomDAO handles room data using Redis.
type RedisRoomDAO struct {
	client             db.RedisClient
	maxReadingsPerRoom int64
	logger             *log.Logger
}

// NewRedisRoomDAO initializes a RedisRoomDAO with the Redis client. A non-positive
// maxReadingsPerRoom selects DEFAULT_MAX_READINGS_PER_ROOM.
func NewRedisRoomDAO(client db.RedisClient, maxReadingsPerRoom int, logger *log.Logger) *RedisRoomDAO {
	if maxReadingsPerRoom <= 0 {
		maxReadingsPerRoom = DEFAULT_MAX_READINGS_PER_ROOM
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RedisRoomDAO{
		client:             client,
		maxReadingsPerRoom: int64(maxReadingsPerRoom),
		logger:             logger.WithPrefix("RedisRoomDAO"),
	}
}

// ReplaceAgenda deletes the stored agenda and pushes entries in order.
func (dao *RedisRoomDAO) ReplaceAgenda(ctx context.Context, entries []models.AgendaEntry) error {
	docs := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal agenda entry for room %s: %w", e.RoomName, err)
		}
		docs = append(docs, string(data))
	}

	if err := dao.client.Del(ctx, AGENDA_KEY_V1); err != nil {
		return fmt.Errorf("failed to clear agenda: %w", err)
	}
	if err := dao.client.RPush(ctx, AGENDA_KEY_V1, docs...); err != nil {
		return fmt.Errorf("failed to store agenda: %w", err)
	}
	dao.logger.Info("stored agenda", "entries", len(docs))
	return nil
}

// ListAgenda returns the stored agenda in insertion order. Undecodable entries are skipped.
func (dao *RedisRoomDAO) ListAgenda(ctx context.Context) ([]models.AgendaEntry, error) {
	docs, err := dao.client.LRange(ctx, AGENDA_KEY_V1, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read agenda: %w", err)
	}
	entries := make([]models.AgendaEntry, 0, len(docs))
	for _, doc := range docs {
		var e models.AgendaEntry
		if err := json.Unmarshal([]byte(doc), &e); err != nil {
			dao.logger.Warn("skipping undecodable agenda entry", "err", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UpsertFacility stores the facility record under the room's key.
func (dao *RedisRoomDAO) UpsertFacility(ctx context.Context, f models.Facility) error {
	if f.RoomName == "" {
		return errors.New("facility record has no room_name")
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal facility for room %s: %w", f.RoomName, err)
	}
	key := fmt.Sprintf(FACILITY_KEY_FORMAT_V1, f.RoomName)
	if err := dao.client.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to set facility in redis: %w", err)
	}
	return nil
}

// ListFacilities returns every facility record ordered by room name.
func (dao *RedisRoomDAO) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	keys, err := dao.sortedKeys(ctx, FACILITY_KEY_FORMAT_V1)
	if err != nil {
		return nil, err
	}

	facilities := make([]models.Facility, 0, len(keys))
	for _, key := range keys {
		doc, err := dao.client.Get(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			// deleted between the scan and the read
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get facility %s: %w", key, err)
		}
		var f models.Facility
		if err := json.Unmarshal([]byte(doc), &f); err != nil {
			dao.logger.Warn("skipping undecodable facility", "key", key, "err", err)
			continue
		}
		facilities = append(facilities, f)
	}
	return facilities, nil
}

// AppendReadings pushes readings onto their rooms' lists and trims each touched list to
// the newest maxReadingsPerRoom entries.
func (dao *RedisRoomDAO) AppendReadings(ctx context.Context, readings ...models.SensorReading) error {
	byRoom := make(map[string][]string)
	var rooms []string
	for _, r := range readings {
		if r.RoomName == "" {
			return errors.New("sensor reading has no room_name")
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal reading for room %s: %w", r.RoomName, err)
		}
		if _, seen := byRoom[r.RoomName]; !seen {
			rooms = append(rooms, r.RoomName)
		}
		byRoom[r.RoomName] = append(byRoom[r.RoomName], string(data))
	}

	for _, room := range rooms {
		key := fmt.Sprintf(SENSOR_READINGS_KEY_FORMAT_V1, room)
		if err := dao.client.RPush(ctx, key, byRoom[room]...); err != nil {
			return fmt.Errorf("failed to push readings for room %s: %w", room, err)
		}
		if err := dao.client.LTrim(ctx, key, -dao.maxReadingsPerRoom, -1); err != nil {
			return fmt.Errorf("failed to trim readings for room %s: %w", room, err)
		}
	}
	return nil
}

// ListReadings returns the readings of every room, room by room.
func (dao *RedisRoomDAO) ListReadings(ctx context.Context) ([]models.SensorReading, error) {
	keys, err := dao.sortedKeys(ctx, SENSOR_READINGS_KEY_FORMAT_V1)
	if err != nil {
		return nil, err
	}

	var readings []models.SensorReading
	for _, key := range keys {
		docs, err := dao.client.LRange(ctx, key, 0, -1)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		for _, doc := range docs {
			var r models.SensorReading
			if err := json.Unmarshal([]byte(doc), &r); err != nil {
				dao.logger.Warn("skipping undecodable reading", "key", key, "err", err)
				continue
			}
			readings = append(readings, r)
		}
	}
	return readings, nil
}

func (dao *RedisRoomDAO) Ping(ctx context.Context) error {
	return dao.client.Ping(ctx)
}

// sortedKeys lists the keys built from format with any room name.
func (dao *RedisRoomDAO) sortedKeys(ctx context.Context, format string) ([]string, error) {
	pattern := fmt.Sprintf(format, "*")
	keys, err := dao.client.Keys(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys %s: %w", pattern, err)
	}
	sort.Strings(keys)
	return keys, nil
}

