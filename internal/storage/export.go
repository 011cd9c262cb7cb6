package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

type ExportBody struct {
	BodyMetadata
	States [][]float64 `json:"states"`
}

type ExportData struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Bodies   []ExportBody       `json:"bodies"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a stored run, metadata and trajectories, as one JSON
// document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	tr, err := s.LoadStates(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		ID:       meta.ID,
		Name:     meta.Name,
		Dt:       meta.Dt,
		Duration: meta.Duration,
		Steps:    len(tr.Times),
		Times:    tr.Times,
		Bodies:   make([]ExportBody, len(meta.Bodies)),
		Metrics:  meta.Metrics,
	}
	for j, b := range meta.Bodies {
		states := make([][]float64, 0, len(tr.States))
		for _, x := range tr.Trajectory(b.Name) {
			states = append(states, x)
		}
		data.Bodies[j] = ExportBody{BodyMetadata: b, States: states}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies a run's states table to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
