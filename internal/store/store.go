// Package store persists comparison runs for the CLI: a metadata.json
// and one CSV of (t, y...) samples per method, grouped in a directory
// per run. The comparison engine itself stays stateless; this is
// workspace convenience only.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/odelab/internal/compare"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Norm      string    `json:"norm"`
	Methods   []string  `json:"methods"`
	Best      string    `json:"best_method,omitempty"`
}

// Save writes one comparison to a new run directory and returns its id.
func (s *Store) Save(cmp *compare.Comparison) (string, error) {
	runID := fmt.Sprintf("%s_%d", cmp.ModelID, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Model:     cmp.ModelID,
		Timestamp: time.Now(),
		Norm:      string(cmp.Norm),
		Best:      cmp.Best,
	}
	for _, r := range cmp.Results {
		meta.Methods = append(meta.Methods, r.Method)
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "comparison.json"), cmp); err != nil {
		return "", err
	}

	for _, r := range cmp.Results {
		if !r.OK() {
			continue
		}
		path := filepath.Join(runDir, r.Method+".csv")
		if err := writeTrajectoryCSV(path, r.Points); err != nil {
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
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadComparison(runID string) (*compare.Comparison, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "comparison.json"))
	if err != nil {
		return nil, err
	}
	var cmp compare.Comparison
	if err := json.Unmarshal(data, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
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

func writeTrajectoryCSV(path string, points []compare.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if len(points) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range points[0].Y {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range points {
		row := []string{strconv.FormatFloat(p.T, 'g', -1, 64)}
		for _, v := range p.Y {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
