package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"obj-voxel-importer/internal/config"
	"obj-voxel-importer/internal/gridfile"
	"obj-voxel-importer/internal/importer"
	"obj-voxel-importer/internal/palette"
	"obj-voxel-importer/internal/world"
)

const pyramidOBJ = `v 0 0 0
v 4 0 0
v 4 0 4
v 0 0 4
v 2 3 2
f 1 2 5
f 2 3 5
f 3 4 5
f 4 1 5
f 1 4 3 2
`

func setup(t *testing.T) (*importer.Importer, string) {
	t.Helper()
	dir := t.TempDir()
	models := filepath.Join(dir, "models")
	if err := os.MkdirAll(models, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"a.obj", "b.obj", "c.obj"} {
		if err := os.WriteFile(filepath.Join(models, name), []byte(pyramidOBJ), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	cfg := config.Config{ModelsDir: models}
	cfg.Resolve(config.Flags{BaseDir: dir})
	return importer.New(cfg, palette.Default(), nil), dir
}

func TestRun(t *testing.T) {
	im, dir := setup(t)
	w := world.NewMemory()
	defer w.Close()

	y := 0
	jobs := []Job{
		{Request: importer.Request{File: "a.obj", X: 0, Y: &y, Height: 6, Solid: true}},
		{Request: importer.Request{File: "b.obj", X: 100, Y: &y, Height: 6, Solid: true}, Grid: filepath.Join(dir, "out", "b.grid")},
		{Request: importer.Request{File: "c.obj", X: 200, Y: &y, Height: 6}, Preview: filepath.Join(dir, "out", "c.webp")},
		{Request: importer.Request{File: "missing.obj", Height: 6}},
	}
	results := Run(context.Background(), Config{Importer: im, World: w, Workers: 3, PreviewScale: 2}, jobs)
	if len(results) != 4 {
		t.Fatalf("results=%d want 4", len(results))
	}

	rep := Summarize(results)
	if rep.Succeeded != 3 || rep.Failed != 1 {
		t.Fatalf("succeeded=%d failed=%d", rep.Succeeded, rep.Failed)
	}
	if results[3].Success || results[3].Error == "" {
		t.Fatalf("missing model should fail: %+v", results[3])
	}
	if results[0].Placed != results[1].Placed || results[0].Placed == 0 {
		t.Fatalf("placed a=%d b=%d", results[0].Placed, results[1].Placed)
	}
	if w.Len() != rep.Placed {
		t.Fatalf("world len=%d want %d", w.Len(), rep.Placed)
	}

	res, unknown, err := gridfile.ReadFile(jobs[1].Grid, palette.Default())
	if err != nil || len(unknown) != 0 {
		t.Fatalf("grid read: %v unknown=%v", err, unknown)
	}
	if res.Count() != results[1].Solid {
		t.Fatalf("grid count=%d want %d", res.Count(), results[1].Solid)
	}
	if _, err := os.Stat(jobs[2].Preview); err != nil {
		t.Fatalf("preview: %v", err)
	}
}

func TestRun_VoxelizeOnly(t *testing.T) {
	im, _ := setup(t)
	results := Run(context.Background(), Config{Importer: im, Workers: 2}, []Job{
		{Request: importer.Request{File: "a.obj", Height: 6, Solid: true}},
	})
	if !results[0].Success || results[0].Placed != 0 || results[0].Origin != nil || results[0].Solid == 0 {
		t.Fatalf("result=%+v", results[0])
	}
}

func TestRun_CancelledStartsNothing(t *testing.T) {
	im, _ := setup(t)
	w := world.NewMemory()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []Job{
		{Request: importer.Request{File: "a.obj", Height: 6}},
		{Request: importer.Request{File: "b.obj", Height: 6}},
		{Request: importer.Request{File: "c.obj", Height: 6}},
	}
	results := Run(ctx, Config{Importer: im, World: w, Workers: 2}, jobs)
	for i, r := range results {
		if r.Success || r.File != jobs[i].File || r.Error != context.Canceled.Error() {
			t.Fatalf("result %d=%+v want cancelled", i, r)
		}
	}
	if w.Len() != 0 {
		t.Fatalf("world len=%d want 0", w.Len())
	}
}

func TestLoadJobsAndWriteReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")
	raw := `[{"file": "a.obj", "x": 1, "z": 2, "height": 20, "solid": true, "preview": "a.webp"},
	         {"file": "b.obj", "x": 5, "y": 70, "z": 6}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	jobs, err := LoadJobs(path)
	if err != nil {
		t.Fatalf("LoadJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].Height != 20 || !jobs[0].Solid || jobs[0].Y != nil || jobs[0].Preview != "a.webp" {
		t.Fatalf("job0=%+v", jobs[0])
	}
	if jobs[1].Y == nil || *jobs[1].Y != 70 {
		t.Fatalf("job1 y=%v want 70", jobs[1].Y)
	}
	if !jobs[1].Solid {
		t.Fatalf("job1 without solid key should default to solid")
	}

	if err := os.WriteFile(path, []byte(`[{"file":"a.obj","x":1,"z":2},{"file":"b.obj","solid":false}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	jobs, err = LoadJobs(path)
	if err != nil {
		t.Fatalf("LoadJobs: %v", err)
	}
	if !jobs[0].Solid || jobs[0].X != 1 || jobs[0].Z != 2 || jobs[0].Height != 0 {
		t.Fatalf("job0=%+v want solid default", jobs[0])
	}
	if jobs[1].Solid {
		t.Fatalf("explicit solid=false was overridden")
	}

	if err := os.WriteFile(path, []byte(`[{"x": 1}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadJobs(path); err == nil {
		t.Fatalf("expected error for job without file")
	}

	out := filepath.Join(dir, "report", "batch.json")
	if err := WriteReport(out, []Result{{File: "a.obj", Success: true, Placed: 10}, {File: "b.obj", Error: "boom"}}); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var rep Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.Total != 2 || rep.Succeeded != 1 || rep.Failed != 1 || rep.Placed != 10 {
		t.Fatalf("report=%+v", rep)
	}
}
