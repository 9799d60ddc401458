package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"roomrec-server/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS agenda (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	room_name TEXT NOT NULL,
	time_slot TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS facilities (
	room_name           TEXT PRIMARY KEY,
	videoprojector      INTEGER NOT NULL DEFAULT 0,
	seating_capacity    INTEGER NOT NULL DEFAULT 0,
	computers           INTEGER NOT NULL DEFAULT 0,
	robots_for_training INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS sensor_readings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_name   TEXT NOT NULL,
	ts          TEXT NOT NULL,
	temperature REAL,
	co2_level   REAL,
	humidity    REAL,
	voc_level   REAL,
	pm10        REAL,
	pm25        REAL,
	sound_level REAL
);
CREATE INDEX IF NOT EXISTS idx_sensor_readings_room ON sensor_readings (room_name, id);
`

// SQLiteRoomDAO stores room data in a single SQLite file.
type SQLiteRoomDAO struct {
	path               string
	db                 *sql.DB
	maxReadingsPerRoom int
	logger             *log.Logger
}

// NewSQLiteRoomDAO returns a DAO for the database at path. Open must be called before use.
func NewSQLiteRoomDAO(path string, maxReadingsPerRoom int, logger *log.Logger) *SQLiteRoomDAO {
	if logger == nil {
		logger = log.Default()
	}
	return &SQLiteRoomDAO{
		path:               path,
		maxReadingsPerRoom: maxReadingsPerRoom,
		logger:             logger.WithPrefix("SQLiteRoomDAO"),
	}
}

// Open creates the database directory and file if needed and applies the schema.
func (s *SQLiteRoomDAO) Open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time; SQLite serialises writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.db = db
	s.logger.Info("opened database", "path", s.path)
	return nil
}

func (s *SQLiteRoomDAO) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteRoomDAO) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("database not open")
	}
	return s.db.PingContext(ctx)
}

func (s *SQLiteRoomDAO) ReplaceAgenda(ctx context.Context, entries []models.AgendaEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM agenda"); err != nil {
		return fmt.Errorf("failed to clear agenda: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO agenda (room_name, time_slot) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.RoomName, e.TimeSlot); err != nil {
			return fmt.Errorf("failed to insert agenda entry for room %s: %w", e.RoomName, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteRoomDAO) ListAgenda(ctx context.Context) ([]models.AgendaEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT room_name, time_slot FROM agenda ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query agenda: %w", err)
	}
	defer rows.Close()

	var entries []models.AgendaEntry
	for rows.Next() {
		var e models.AgendaEntry
		if err := rows.Scan(&e.RoomName, &e.TimeSlot); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteRoomDAO) UpsertFacility(ctx context.Context, f models.Facility) error {
	if f.RoomName == "" {
		return errors.New("facility record has no room_name")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facilities (room_name, videoprojector, seating_capacity, computers, robots_for_training)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(room_name) DO UPDATE SET
			videoprojector = excluded.videoprojector,
			seating_capacity = excluded.seating_capacity,
			computers = excluded.computers,
			robots_for_training = excluded.robots_for_training`,
		f.RoomName, f.Facilities.VideoProjector, f.Facilities.SeatingCapacity,
		f.Facilities.Computers, f.Facilities.RobotsForTraining)
	if err != nil {
		return fmt.Errorf("failed to upsert facility for room %s: %w", f.RoomName, err)
	}
	return nil
}

func (s *SQLiteRoomDAO) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT room_name, videoprojector, seating_capacity, computers, robots_for_training
		FROM facilities ORDER BY room_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		var f models.Facility
		if err := rows.Scan(&f.RoomName, &f.Facilities.VideoProjector, &f.Facilities.SeatingCapacity,
			&f.Facilities.Computers, &f.Facilities.RobotsForTraining); err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

// AppendReadings inserts readings in one transaction, then keeps only the newest
// maxReadingsPerRoom rows of each touched room when a maximum is set.
func (s *SQLiteRoomDAO) AppendReadings(ctx context.Context, readings ...models.SensorReading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sensor_readings
			(room_name, ts, temperature, co2_level, humidity, voc_level, pm10, pm25, sound_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	touched := make(map[string]bool)
	for _, r := range readings {
		if r.RoomName == "" {
			return errors.New("sensor reading has no room_name")
		}
		_, err := stmt.ExecContext(ctx, r.RoomName, r.Timestamp.Format(time.RFC3339Nano),
			nullable(r.Temperature), nullable(r.CO2Level), nullable(r.Humidity), nullable(r.VOCLevel),
			nullable(r.PM10), nullable(r.PM25), nullable(r.SoundLevel))
		if err != nil {
			return fmt.Errorf("failed to insert reading for room %s: %w", r.RoomName, err)
		}
		touched[r.RoomName] = true
	}

	if s.maxReadingsPerRoom > 0 {
		for room := range touched {
			_, err := tx.ExecContext(ctx, `
				DELETE FROM sensor_readings WHERE room_name = ? AND id NOT IN (
					SELECT id FROM sensor_readings WHERE room_name = ? ORDER BY id DESC LIMIT ?)`,
				room, room, s.maxReadingsPerRoom)
			if err != nil {
				return fmt.Errorf("failed to trim readings for room %s: %w", room, err)
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteRoomDAO) ListReadings(ctx context.Context) ([]models.SensorReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT room_name, ts, temperature, co2_level, humidity, voc_level, pm10, pm25, sound_level
		FROM sensor_readings ORDER BY room_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor readings: %w", err)
	}
	defer rows.Close()

	var readings []models.SensorReading
	for rows.Next() {
		var (
			r                                         models.SensorReading
			ts                                        string
			temp, co2, humidity, voc, pm10, pm25, snd sql.NullFloat64
		)
		if err := rows.Scan(&r.RoomName, &ts, &temp, &co2, &humidity, &voc, &pm10, &pm25, &snd); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			s.logger.Warn("skipping reading with bad timestamp", "room", r.RoomName, "ts", ts)
			continue
		}
		r.Timestamp = parsed
		r.Temperature = metric(temp)
		r.CO2Level = metric(co2)
		r.Humidity = metric(humidity)
		r.VOCLevel = metric(voc)
		r.PM10 = metric(pm10)
		r.PM25 = metric(pm25)
		r.SoundLevel = metric(snd)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func nullable(m models.Metric) sql.NullFloat64 {
	v, ok := m.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func metric(n sql.NullFloat64) models.Metric {
	if !n.Valid {
		return models.Unknown
	}
	return models.Known(n.Float64)
}
