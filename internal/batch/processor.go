// Package batch imports many models with a worker pool.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"obj-voxel-importer/internal/gridfile"
	"obj-voxel-importer/internal/importer"
	"obj-voxel-importer/internal/preview"
	"obj-voxel-importer/internal/world"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Importer     *importer.Importer
	World        world.World // nil only voxelizes and exports
	Workers      int
	PreviewScale int
	Logger       *log.Logger

	ProgressEvery time.Duration // 0 means every 2s
}

// Job is one model of a batch. A job without a "solid" key fills the interior.
type Job struct {
	importer.Request
	Grid    string `json:"grid,omitempty"`    // write the voxel grid here
	Preview string `json:"preview,omitempty"` // write a top-down WebP here
}

func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	p := plain{Request: importer.Request{Solid: true}}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*j = Job(p)
	return nil
}

// Result holds the outcome of processing one job.
type Result struct {
	File     string  `json:"file"`
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
	SizeX    int     `json:"size_x,omitempty"`
	SizeY    int     `json:"size_y,omitempty"`
	SizeZ    int     `json:"size_z,omitempty"`
	Solid    int     `json:"solid,omitempty"`
	Placed   int     `json:"placed"`
	Skipped  int     `json:"skipped"`
	Origin   *[3]int `json:"origin,omitempty"`
	ImportID string  `json:"import_id,omitempty"`
	Seconds  float64 `json:"seconds"`
}

// Run processes all jobs using a worker pool. Voxelization runs in parallel;
// placement goes through the world queue one import at a time. Once ctx is
// cancelled no further jobs are started; those get a failed Result.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	var processed, failed atomic.Int64

	workers := max(cfg.Workers, 1)
	done := make(chan struct{})
	go reportProgress(done, len(jobs), &processed, &failed, cfg.progressEvery())

	jobChan := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				if !results[idx].Success {
					failed.Add(1)
				}
				processed.Add(1)
			}
		}()
	}

	next := 0
feed:
	for ; next < len(jobs) && ctx.Err() == nil; next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobChan <- next:
		}
	}
	close(jobChan)
	wg.Wait()
	close(done)

	for i := next; i < len(jobs); i++ {
		results[i] = Result{File: jobs[i].File, Error: ctx.Err().Error()}
	}
	return results
}

func (c Config) progressEvery() time.Duration {
	if c.ProgressEvery > 0 {
		return c.ProgressEvery
	}
	return 2 * time.Second
}

// reportProgress prints "[n/total] x.y models/sec" every interval until done closes.
func reportProgress(done <-chan struct{}, total int, processed, failed *atomic.Int64, every time.Duration) {
	start := time.Now()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p := processed.Load()
			if p == 0 {
				continue
			}
			rate := float64(p) / time.Since(start).Seconds()
			if f := failed.Load(); f > 0 {
				fmt.Printf("  [%d/%d] %.1f models/sec, %d failed\n", p, total, rate, f)
			} else {
				fmt.Printf("  [%d/%d] %.1f models/sec\n", p, total, rate)
			}
		}
	}
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	start := time.Now()
	r := Result{File: job.File}
	fail := func(err error) Result {
		r.Error = err.Error()
		r.Seconds = time.Since(start).Seconds()
		if cfg.Logger != nil {
			cfg.Logger.Printf("batch: %s: %v", job.File, err)
		}
		return r
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	im := cfg.Importer
	g, err := im.Voxelize(ctx, job.Request, nil)
	if err != nil {
		return fail(err)
	}
	r.SizeX, r.SizeY, r.SizeZ = g.Result.SizeX, g.Result.SizeY, g.Result.SizeZ
	r.Solid = g.Result.Count()

	if job.Grid != "" {
		if err := gridfile.WriteFile(job.Grid, g.Result, im.Palette); err != nil {
			return fail(err)
		}
	}
	if job.Preview != "" {
		img := preview.TopDown(g.Result, im.Palette, cfg.PreviewScale)
		if err := preview.WriteWebP(job.Preview, img); err != nil {
			return fail(err)
		}
	}

	if cfg.World != nil {
		rep, err := im.Place(ctx, cfg.World, job.Request, g, start, nil)
		if err != nil {
			return fail(err)
		}
		r.Placed, r.Skipped = rep.Stats.Placed, rep.Stats.Skipped
		r.Origin = &[3]int{rep.Origin.X, rep.Origin.Y, rep.Origin.Z}
		r.ImportID = rep.ImportID
	}

	r.Success = true
	r.Seconds = time.Since(start).Seconds()
	return r
}
