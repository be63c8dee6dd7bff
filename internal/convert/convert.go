// Package convert runs batch conversion of raw splat captures into encoded
// assets, one file per frame.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnevik/splatstream/internal/logger"
	"github.com/arnevik/splatstream/pkg/pointfile"
	"github.com/arnevik/splatstream/pkg/splat"
	"github.com/arnevik/splatstream/pkg/splatfile"
)

// ErrNoInputs reports a glob that matched nothing.
var ErrNoInputs = errors.New("no input files match")

// FrameReader loads one capture file into splat records.
type FrameReader interface {
	ReadFrame(path string) ([]splat.Splat, error)
}

// ReaderFunc adapts a plain function to FrameReader.
type ReaderFunc func(path string) ([]splat.Splat, error)

// ReadFrame calls f.
func (f ReaderFunc) ReadFrame(path string) ([]splat.Splat, error) {
	return f(path)
}

// Options configure a conversion run.
type Options struct {
	// InputGlob selects the capture files. Matches are processed in
	// sorted path order, which defines the frame order.
	InputGlob string
	OutputDir string
	Encode    splat.EncodeOptions

	// FPS is recorded in the sequence manifest.
	FPS float64

	// Workers bounds the number of frames converted concurrently;
	// 0 means one per CPU.
	Workers int

	// EmitSequence writes a sequence manifest grouping the produced
	// assets. It is skipped when any frame fails or the run is canceled.
	EmitSequence bool
	SequenceName string

	// CollectStats measures per-frame position error against the input.
	CollectStats bool

	// Reader defaults to the SPCF point file parser.
	Reader FrameReader
}

// Run converts every file matching the input glob. Frames are independent
// and converted concurrently; cancellation is honored between frames, never
// in the middle of one.
func Run(ctx context.Context, opts Options) (*Report, error) {
	inputs, err := filepath.Glob(opts.InputGlob)
	if err != nil {
		return nil, fmt.Errorf("input glob %q: %w", opts.InputGlob, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputs, opts.InputGlob)
	}
	sort.Strings(inputs)

	if opts.Reader == nil {
		opts.Reader = ReaderFunc(pointfile.ParseFile)
	}
	if opts.SequenceName == "" {
		opts.SequenceName = "sequence.yaml"
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	report := &Report{
		JobID:  uuid.New().String(),
		Frames: make([]FrameResult, len(inputs)),
	}
	for i := range report.Frames {
		report.Frames[i] = FrameResult{Input: inputs[i], Skipped: true}
	}

	logger.Info("starting conversion",
		zap.String("job", report.JobID),
		zap.Int("frames", len(inputs)),
		zap.Int("workers", workers),
		zap.String("output", opts.OutputDir))

	start := time.Now()
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Frames[i] = convertFrame(&opts, inputs[i])
			}
		}()
	}

feed:
	for i := range inputs {
		if ctx.Err() != nil {
			report.Canceled = true
			break
		}
		select {
		case <-ctx.Done():
			report.Canceled = true
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	report.Duration = time.Since(start)

	if report.Canceled {
		logger.Warn("conversion canceled",
			zap.String("job", report.JobID),
			zap.Int("skipped", report.Skipped()))
	}

	if opts.EmitSequence {
		if report.Canceled || report.Failed() > 0 {
			logger.Warn("skipping sequence manifest for incomplete run",
				zap.Int("failed", report.Failed()),
				zap.Bool("canceled", report.Canceled))
		} else {
			path, err := writeManifest(&opts, report)
			if err != nil {
				return report, err
			}
			report.ManifestPath = path
		}
	}

	logger.Info("conversion finished",
		zap.String("job", report.JobID),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
		zap.Int("skipped", report.Skipped()),
		zap.Duration("elapsed", report.Duration))
	return report, nil
}

// convertFrame runs the full pipeline for one capture file.
func convertFrame(opts *Options, input string) FrameResult {
	res := FrameResult{Input: input}
	start := time.Now()

	points, err := opts.Reader.ReadFrame(input)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", input, err)
		logger.Error("frame failed", zap.String("input", input), zap.Error(err))
		return res
	}

	// Encoding reorders and rewrites the input slice, so keep a pristine
	// copy when error measurement is requested.
	var ref []splat.Splat
	if opts.CollectStats {
		ref = make([]splat.Splat, len(points))
		copy(ref, points)
	}

	asset, err := splat.Encode(points, opts.Encode)
	if err != nil {
		res.Err = fmt.Errorf("encoding %s: %w", input, err)
		logger.Error("frame failed", zap.String("input", input), zap.Error(err))
		return res
	}

	out := outputPath(opts.OutputDir, input)
	if err := splatfile.WriteAssetFile(out, asset); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", out, err)
		logger.Error("frame failed", zap.String("input", input), zap.Error(err))
		return res
	}

	res.Output = out
	res.SplatCount = asset.SplatCount
	res.Bytes = asset.DataSize()
	if opts.CollectStats {
		res.Stats = measurePositionError(ref, asset)
	}
	res.Duration = time.Since(start)

	logger.Debug("frame converted",
		zap.String("input", input),
		zap.String("output", out),
		zap.Int("splats", res.SplatCount),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("elapsed", res.Duration))
	return res
}

// outputPath derives the asset file name from the capture file name.
func outputPath(dir, input string) string {
	base := filepath.Base(input)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(dir, base+".spla")
}

// writeManifest emits the sequence manifest next to the produced assets.
func writeManifest(opts *Options, report *Report) (string, error) {
	frames := make([]string, 0, len(report.Frames))
	for i := range report.Frames {
		frames = append(frames, filepath.Base(report.Frames[i].Output))
	}
	m := &splatfile.SequenceManifest{
		Version: splatfile.ManifestVersion,
		FPS:     opts.FPS,
		Frames:  frames,
	}
	path := filepath.Join(opts.OutputDir, opts.SequenceName)
	if err := splatfile.WriteManifestFile(path, m); err != nil {
		return "", err
	}
	logger.Info("sequence manifest written",
		zap.String("path", path),
		zap.Float64("fps", opts.FPS),
		zap.Int("frames", len(frames)))
	return path, nil
}
