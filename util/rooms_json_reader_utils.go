package util

import (
	"encoding/json"
	"fmt"
	"os"

	"roomrec-server/models"
)

// ReadAgendaFromJSON loads agenda entries from a JSON array on disk.
func ReadAgendaFromJSON(filePath string) ([]models.AgendaEntry, error) {
	return readJSONArray[models.AgendaEntry](filePath, "agenda entries")
}

// ReadFacilitiesFromJSON loads facility records, nested or flat, from a JSON array on disk.
func ReadFacilitiesFromJSON(filePath string) ([]models.Facility, error) {
	return readJSONArray[models.Facility](filePath, "facilities")
}

// ReadSensorReadingsFromJSON loads sensor readings from a JSON array on disk.
func ReadSensorReadingsFromJSON(filePath string) ([]models.SensorReading, error) {
	return readJSONArray[models.SensorReading](filePath, "sensor readings")
}

func readJSONArray[T any](filePath, what string) ([]T, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s from %q: %w", what, filePath, err)
	}
	return out, nil
}
