package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ddsim/dd2d/internal/sim"
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
	Label       string             `json:"label"`
	Timestamp   time.Time          `json:"timestamp"`
	Mu          float64            `json:"mu"`
	Nu          float64            `json:"nu"`
	Drag        float64            `json:"drag"`
	TauCRSS     float64            `json:"tau_crss"`
	MaxDt       float64            `json:"max_dt"`
	Iterations  int                `json:"iterations"`
	StepsTaken  int                `json:"steps_taken"`
	Nucleated   int                `json:"nucleated"`
	Annihilated int                `json:"annihilated"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes one run directory containing metadata.json and the
// defect snapshots as defects.csv. Snapshot rows are ragged because
// the dislocation population changes during a run; each CSV row is
// the time followed by the line coordinates of that iteration's
// dislocations.
func (s *Store) Save(label string, cfg sim.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", label, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Label:       label,
		Timestamp:   time.Now(),
		Mu:          cfg.Mu,
		Nu:          cfg.Nu,
		Drag:        cfg.Drag,
		TauCRSS:     cfg.TauCRSS,
		MaxDt:       cfg.MaxDt,
		Iterations:  cfg.Iterations,
		StepsTaken:  result.StepsTaken,
		Nucleated:   result.Nucleated,
		Annihilated: result.Annihilated,
		Metrics:     result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "defects.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	for i, snap := range result.Snapshots {
		row := make([]string, 0, len(snap)+1)
		row = append(row, strconv.FormatFloat(result.SnapshotTimes[i], 'e', 9, 64))
		for _, val := range snap {
			row = append(row, strconv.FormatFloat(val, 'e', 9, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSnapshots reads the ragged defect rows of a run back out,
// returning the snapshot times and the per-snapshot line coordinates.
func (s *Store) LoadSnapshots(runID string) ([]float64, [][]float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, "defects.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	snaps := make([][]float64, 0, len(records))

	for _, record := range records {
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		snap := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			snap = append(snap, val)
		}
		snaps = append(snaps, snap)
	}

	return times, snaps, nil
}
