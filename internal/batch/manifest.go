package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadJobs reads a JSON array of jobs.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}
	var jobs []Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("batch: parse %s: %w", path, err)
	}
	for i, j := range jobs {
		if j.File == "" {
			return nil, fmt.Errorf("batch: %s: job %d has no file", path, i)
		}
	}
	return jobs, nil
}

// Report is the JSON document written after a batch.
type Report struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Placed    int      `json:"placed"`
	Skipped   int      `json:"skipped"`
	Results   []Result `json:"results"`
}

// Summarize totals results.
func Summarize(results []Result) Report {
	rep := Report{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
		rep.Placed += r.Placed
		rep.Skipped += r.Skipped
	}
	return rep
}

// WriteReport writes the batch report to path.
func WriteReport(path string, results []Result) error {
	data, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
