// Package dao holds the storage contract of agenda, facility and sensor data. The
// recommender never touches a store directly; snapshots are built from a RoomDAO.
package dao

import (
	"context"

	"roomrec-server/models"
)

// RoomDAO reads and writes the three room datasets.
type RoomDAO interface {
	// ReplaceAgenda swaps the whole agenda for entries.
	ReplaceAgenda(ctx context.Context, entries []models.AgendaEntry) error
	ListAgenda(ctx context.Context) ([]models.AgendaEntry, error)

	// UpsertFacility stores the record of one room, replacing any previous one.
	UpsertFacility(ctx context.Context, f models.Facility) error
	ListFacilities(ctx context.Context) ([]models.Facility, error)

	// AppendReadings adds readings to their rooms' history. Stores may drop the oldest
	// readings of a room beyond a configured maximum.
	AppendReadings(ctx context.Context, readings ...models.SensorReading) error
	ListReadings(ctx context.Context) ([]models.SensorReading, error)

	Ping(ctx context.Context) error
}
