package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"

	"roomrec-server/config"
	"roomrec-server/dao"
	"roomrec-server/util"
)

// seedBatchSize bounds the readings appended per store call.
const seedBatchSize = 500

// SeedReport counts what a seed run stored.
type SeedReport struct {
	AgendaEntries int
	Facilities    int
	Readings      int
}

// SeedService loads the JSON resource files into the store.
type SeedService struct {
	roomDao dao.RoomDAO
	logger  *log.Logger
}

func NewSeedService(roomDao dao.RoomDAO, logger *log.Logger) *SeedService {
	if logger == nil {
		logger = log.Default()
	}
	return &SeedService{roomDao: roomDao, logger: logger.WithPrefix("SeedService")}
}

// SeedFromDir reads the agenda, facilities and sensor readings resources from dir. The
// agenda replaces the stored one, facilities are upserted and readings appended. A missing
// file is skipped.
func (ss *SeedService) SeedFromDir(ctx context.Context, dir string) (SeedReport, error) {
	var report SeedReport

	agenda, err := util.ReadAgendaFromJSON(filepath.Join(dir, config.AGENDA_RESOURCE))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ss.logger.Warn("no agenda resource, skipping", "dir", dir)
	case err != nil:
		return report, err
	default:
		if err := ss.roomDao.ReplaceAgenda(ctx, agenda); err != nil {
			return report, fmt.Errorf("failed to seed agenda: %w", err)
		}
		report.AgendaEntries = len(agenda)
	}

	facilities, err := util.ReadFacilitiesFromJSON(filepath.Join(dir, config.FACILITIES_RESOURCE))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ss.logger.Warn("no facilities resource, skipping", "dir", dir)
	case err != nil:
		return report, err
	default:
		for _, f := range facilities {
			if err := ss.roomDao.UpsertFacility(ctx, f); err != nil {
				return report, fmt.Errorf("failed to seed facilities: %w", err)
			}
			report.Facilities++
		}
	}

	readings, err := util.ReadSensorReadingsFromJSON(filepath.Join(dir, config.SENSOR_READINGS_RESOURCE))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		ss.logger.Warn("no sensor readings resource, skipping", "dir", dir)
	case err != nil:
		return report, err
	default:
		for start := 0; start < len(readings); start += seedBatchSize {
			end := min(start+seedBatchSize, len(readings))
			if err := ss.roomDao.AppendReadings(ctx, readings[start:end]...); err != nil {
				return report, fmt.Errorf("failed to seed sensor readings: %w", err)
			}
			report.Readings = end
		}
	}

	ss.logger.Info("seed complete",
		"agenda", report.AgendaEntries,
		"facilities", report.Facilities,
		"readings", report.Readings)
	return report, nil
}
