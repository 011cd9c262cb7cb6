package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/orbit"
	"github.com/san-kum/kepler/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// stateColumns are the per-body CSV column suffixes, in State order.
var stateColumns = [6]string{"x", "y", "z", "vx", "vy", "vz"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Dir is the directory holding one run's files.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type BodyMetadata struct {
	Name     string         `json:"name"`
	Elements orbit.Elements `json:"elements"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Bodies    []BodyMetadata     `json:"bodies"`
	Metrics   map[string]float64 `json:"metrics"`
	Errors    []string           `json:"errors,omitempty"`
}

// Save writes metadata.json and states.csv under a new run directory and
// returns the run ID.
func (s *Store) Save(name string, bodies []sim.Body, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := s.Dir(runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: now,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Steps:     result.StepsTaken,
		Bodies:    make([]BodyMetadata, len(bodies)),
		Metrics:   result.Metrics,
	}
	for i, b := range bodies {
		meta.Bodies[i] = BodyMetadata{Name: b.Name, Elements: b.Propagator.Elements()}
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStates(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(stateHeader(result.Bodies)); err != nil {
		return err
	}
	for i, step := range result.States {
		row := []string{formatFloat(result.Times[i])}
		for _, x := range step {
			for _, v := range x {
				row = append(row, formatFloat(v))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func stateHeader(bodies []string) []string {
	header := []string{"time"}
	for _, b := range bodies {
		for _, c := range stateColumns {
			header = append(header, b+"_"+c)
		}
	}
	return header
}

// formatFloat keeps full precision so reloaded states match exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, newest first.
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
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Trajectories is a run's state table reloaded from CSV.
type Trajectories struct {
	Bodies []string
	Times  []float64
	// States[i][j] is body j at Times[i].
	States [][]dynamo.State
}

// Trajectory returns one body's states, or nil if the body is unknown.
func (tr *Trajectories) Trajectory(body string) []dynamo.State {
	for j, name := range tr.Bodies {
		if name != body {
			continue
		}
		out := make([]dynamo.State, len(tr.States))
		for i, step := range tr.States {
			out[i] = step[j]
		}
		return out
	}
	return nil
}

var ErrMalformedStates = errors.New("storage: malformed states file")

func (s *Store) LoadStates(runID string) (*Trajectories, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedStates)
	}

	bodies, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}

	tr := &Trajectories{
		Bodies: bodies,
		Times:  make([]float64, 0, len(records)-1),
		States: make([][]dynamo.State, 0, len(records)-1),
	}
	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for k, field := range record {
			values[k], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedStates, i+1, err)
			}
		}
		step := make([]dynamo.State, len(bodies))
		for j := range bodies {
			off := 1 + j*len(stateColumns)
			step[j] = dynamo.State(values[off : off+len(stateColumns)])
		}
		tr.Times = append(tr.Times, values[0])
		tr.States = append(tr.States, step)
	}
	return tr, nil
}

func parseHeader(header []string) ([]string, error) {
	n := len(stateColumns)
	if len(header) == 0 || header[0] != "time" || (len(header)-1)%n != 0 {
		return nil, fmt.Errorf("%w: bad header %v", ErrMalformedStates, header)
	}

	bodies := make([]string, 0, (len(header)-1)/n)
	for off := 1; off < len(header); off += n {
		name, ok := strings.CutSuffix(header[off], "_"+stateColumns[0])
		if !ok {
			return nil, fmt.Errorf("%w: unexpected column %q", ErrMalformedStates, header[off])
		}
		for k, c := range stateColumns {
			if header[off+k] != name+"_"+c {
				return nil, fmt.Errorf("%w: unexpected column %q", ErrMalformedStates, header[off+k])
			}
		}
		bodies = append(bodies, name)
	}
	return bodies, nil
}
