package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Times     []float64   `json:"times"`
	Kinetic   []float64   `json:"kinetic"`
	Potential []float64   `json:"potential"`
	Total     []float64   `json:"total"`
}

// ExportJSON writes a stored run as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:       *meta,
		Times:     series.Times,
		Kinetic:   series.Kinetic,
		Potential: series.Potential,
		Total:     series.Total,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) ExportJSONFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(file, runID)
}
