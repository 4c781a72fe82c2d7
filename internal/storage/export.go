package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/ddsim/dd2d/internal/sim"
)

type ExportData struct {
	Label         string             `json:"label"`
	Mu            float64            `json:"mu"`
	Nu            float64            `json:"nu"`
	Drag          float64            `json:"drag"`
	TauCRSS       float64            `json:"tau_crss"`
	Steps         int                `json:"steps"`
	Times         []float64          `json:"times"`
	SnapshotTimes []float64          `json:"snapshot_times"`
	Snapshots     [][]float64        `json:"snapshots"`
	Nucleated     int                `json:"nucleated"`
	Annihilated   int                `json:"annihilated"`
	Metrics       map[string]float64 `json:"metrics"`
}

func exportData(label string, cfg sim.Config, result *sim.Result) ExportData {
	return ExportData{
		Label:         label,
		Mu:            cfg.Mu,
		Nu:            cfg.Nu,
		Drag:          cfg.Drag,
		TauCRSS:       cfg.TauCRSS,
		Steps:         result.StepsTaken,
		Times:         result.Times,
		SnapshotTimes: result.SnapshotTimes,
		Snapshots:     result.Snapshots,
		Nucleated:     result.Nucleated,
		Annihilated:   result.Annihilated,
		Metrics:       result.Metrics,
	}
}

func exportTo(w io.Writer, label string, cfg sim.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(label, cfg, result))
}

func ExportJSON(path, label string, cfg sim.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportTo(file, label, cfg, result)
}

func ExportJSONStdout(label string, cfg sim.Config, result *sim.Result) error {
	return exportTo(os.Stdout, label, cfg, result)
}
