package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/ljmd/internal/config"
	"github.com/san-kum/ljmd/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "energies.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name,omitempty"`
	Model       string             `json:"model"`
	Kernel      string             `json:"kernel"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Particles   int                `json:"particles"`
	BoxSize     float64            `json:"box_size"`
	Temperature float64            `json:"temperature"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Series is the sampled energy history of a run.
type Series struct {
	Times     []float64
	Kinetic   []float64
	Potential []float64
	Total     []float64
}

func (s *Store) Save(cfg *config.Config, kernel string, result *dynamo.Result) (string, error) {
	label := cfg.Name
	if label == "" {
		label = cfg.Model
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", label, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        cfg.Name,
		Model:       cfg.Model,
		Kernel:      kernel,
		Integrator:  cfg.Integrator,
		Timestamp:   now,
		Seed:        cfg.Seed,
		Particles:   cfg.Particles,
		BoxSize:     cfg.BoxLength(),
		Temperature: cfg.Temperature,
		Dt:          cfg.Dt,
		Steps:       cfg.Steps,
		StepsTaken:  result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "kinetic", "potential", "total"}); err != nil {
		return "", err
	}
	for i := range result.Times {
		row := []string{
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Kinetic[i], 'g', 12, 64),
			strconv.FormatFloat(result.Potential[i], 'g', 12, 64),
			strconv.FormatFloat(result.Total[i], 'g', 12, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", seriesFile, err)
	}

	series := &Series{}
	for i := 1; i < len(records); i++ {
		var vals [4]float64
		for j := range vals {
			v, err := strconv.ParseFloat(records[i][j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+1, err)
			}
			vals[j] = v
		}
		series.Times = append(series.Times, vals[0])
		series.Kinetic = append(series.Kinetic, vals[1])
		series.Potential = append(series.Potential, vals[2])
		series.Total = append(series.Total, vals[3])
	}
	return series, nil
}
