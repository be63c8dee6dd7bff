package convert

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arnevik/splatstream/internal/logger"
	"github.com/arnevik/splatstream/pkg/splat"
)

// FrameResult records the outcome of one frame.
type FrameResult struct {
	Input      string
	Output     string
	SplatCount int
	Bytes      int64
	Duration   time.Duration

	// Skipped marks frames never scheduled because the run was canceled.
	Skipped bool
	Err     error

	// Stats is nil unless error measurement ran for this frame.
	Stats *QualityStats
}

// QualityStats summarizes per-splat position error introduced by encoding,
// in the same units as the input positions.
type QualityStats struct {
	Mean float64
	RMS  float64
	Max  float64
	P95  float64
}

// Report summarizes a conversion run.
type Report struct {
	JobID        string
	Frames       []FrameResult
	Duration     time.Duration
	ManifestPath string
	Canceled     bool
}

// Succeeded counts frames that produced an asset.
func (r *Report) Succeeded() int {
	n := 0
	for i := range r.Frames {
		if !r.Frames[i].Skipped && r.Frames[i].Err == nil {
			n++
		}
	}
	return n
}

// Failed counts frames that were attempted and errored.
func (r *Report) Failed() int {
	n := 0
	for i := range r.Frames {
		if r.Frames[i].Err != nil {
			n++
		}
	}
	return n
}

// Skipped counts frames never attempted.
func (r *Report) Skipped() int {
	n := 0
	for i := range r.Frames {
		if r.Frames[i].Skipped {
			n++
		}
	}
	return n
}

// TotalBytes sums the produced asset payload sizes.
func (r *Report) TotalBytes() int64 {
	var n int64
	for i := range r.Frames {
		n += r.Frames[i].Bytes
	}
	return n
}

// TotalSplats sums the encoded splat counts.
func (r *Report) TotalSplats() int {
	n := 0
	for i := range r.Frames {
		n += r.Frames[i].SplatCount
	}
	return n
}

// measurePositionError decodes the asset back and compares splat positions
// against the raw input. Returns nil when the asset cannot be decoded on the
// CPU, such as with GPU-compressed color data.
func measurePositionError(ref []splat.Splat, a *splat.Asset) *QualityStats {
	decoded, err := splat.Decode(a)
	if err != nil {
		logger.Debug("skipping error measurement", zap.Error(err))
		return nil
	}

	// The encoder sorted the splats spatially; apply the same ordering to
	// the reference copy so indices line up. The asset carries the bounds
	// the ordering was derived from.
	splat.ReorderMorton(ref, a.Bounds)

	errs := make([]float64, len(ref))
	for i := range ref {
		errs[i] = float64(decoded[i].Pos.Sub(ref[i].Pos).Length())
	}

	sort.Float64s(errs)
	return &QualityStats{
		Mean: stat.Mean(errs, nil),
		RMS:  floats.Norm(errs, 2) / math.Sqrt(float64(len(errs))),
		Max:  errs[len(errs)-1],
		P95:  stat.Quantile(0.95, stat.Empirical, errs, nil),
	}
}
