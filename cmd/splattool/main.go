// splattool is a CLI utility for converting, inspecting and replaying
// gaussian splat assets.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/arnevik/splatstream/internal/config"
	"github.com/arnevik/splatstream/internal/convert"
	"github.com/arnevik/splatstream/internal/logger"
	"github.com/arnevik/splatstream/pkg/playback"
	"github.com/arnevik/splatstream/pkg/splatfile"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "convert", "c":
		cmdConvert(args)
	case "info":
		cmdInfo(args)
	case "play":
		cmdPlay(args)
	case "initconfig":
		cmdInitConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`splattool - gaussian splat asset utility

Usage:
  splattool <command> [options]

Commands:
  convert <glob> <output_dir>  Convert SPCF captures into SPLA assets
  info <file>                  Show asset or sequence information
  play <sequence.yaml>         Simulate sequence playback
  initconfig [path]            Write the default config file

Examples:
  splattool convert "captures/*.spcf" ./assets
  splattool convert -preset low -stats "captures/*.spcf" ./assets
  splattool info assets/frame_0000.spla
  splattool play -mode pingpong -speed 2 assets/sequence.yaml`)
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default: auto-discover)")
	preset := fs.String("preset", "", "Quality preset: veryhigh, high, medium, low")
	posFormat := fs.String("pos", "", "Position format override")
	scaleFormat := fs.String("scale", "", "Scale format override")
	colorFormat := fs.String("color", "", "Color format override")
	shFormat := fs.String("sh", "", "SH format override")
	fps := fs.Float64("fps", 0, "Sequence frame rate")
	workers := fs.Int("workers", 0, "Concurrent frames (0 = one per CPU)")
	noSeq := fs.Bool("noseq", false, "Skip the sequence manifest")
	stats := fs.Bool("stats", false, "Measure per-frame position error")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: splattool convert [options] <glob> <output_dir>")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *preset != "" {
		cfg.Convert.Preset = *preset
	}
	if *posFormat != "" {
		cfg.Convert.PosFormat = *posFormat
	}
	if *scaleFormat != "" {
		cfg.Convert.ScaleFormat = *scaleFormat
	}
	if *colorFormat != "" {
		cfg.Convert.ColorFormat = *colorFormat
	}
	if *shFormat != "" {
		cfg.Convert.SHFormat = *shFormat
	}
	if *fps > 0 {
		cfg.Convert.FPS = *fps
	}
	if *workers > 0 {
		cfg.Convert.Workers = *workers
	}
	if *noSeq {
		cfg.Convert.EmitSequence = false
	}
	if *stats {
		cfg.Convert.CollectStats = true
	}

	enc, err := cfg.Convert.EncodeOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Ctrl-C stops scheduling new frames; frames in flight finish.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := convert.Run(ctx, convert.Options{
		InputGlob:    fs.Arg(0),
		OutputDir:    fs.Arg(1),
		Encode:       enc,
		FPS:          cfg.Convert.FPS,
		Workers:      cfg.Convert.Workers,
		EmitSequence: cfg.Convert.EmitSequence,
		SequenceName: cfg.Convert.SequenceName,
		CollectStats: cfg.Convert.CollectStats,
	})
	if err != nil {
		logger.Error("conversion failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printReport(report)
	if report.Failed() > 0 || report.Canceled {
		os.Exit(1)
	}
}

func printReport(r *convert.Report) {
	fmt.Printf("Job:      %s\n", r.JobID)
	fmt.Printf("Frames:   %d converted, %d failed, %d skipped\n",
		r.Succeeded(), r.Failed(), r.Skipped())
	fmt.Printf("Splats:   %d\n", r.TotalSplats())
	fmt.Printf("Size:     %.2f MB\n", float64(r.TotalBytes())/(1024*1024))
	fmt.Printf("Elapsed:  %s\n", r.Duration.Round(time.Millisecond))
	if r.ManifestPath != "" {
		fmt.Printf("Sequence: %s\n", r.ManifestPath)
	}

	for i := range r.Frames {
		fr := &r.Frames[i]
		if fr.Err != nil {
			fmt.Fprintf(os.Stderr, "failed: %v\n", fr.Err)
		}
		if fr.Stats != nil {
			fmt.Printf("  %-28s pos err mean %.6f  p95 %.6f  max %.6f\n",
				filepath.Base(fr.Output), fr.Stats.Mean, fr.Stats.P95, fr.Stats.Max)
		}
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	showChunks := fs.Bool("chunks", false, "List per-chunk position ranges")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: splattool info <file.spla | sequence.yaml>")
		os.Exit(1)
	}

	path := fs.Arg(0)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		printSequenceInfo(path)
	default:
		printAssetInfo(path, *showChunks)
	}
}

func printAssetInfo(path string, showChunks bool) {
	a, err := splatfile.ParseAssetFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Asset:    %s\n", path)
	fmt.Printf("Splats:   %d\n", a.SplatCount)
	fmt.Printf("Formats:  pos %s, scale %s, color %s, sh %s\n",
		a.PosFormat, a.ScaleFormat, a.ColorFormat, a.SHFormat)
	fmt.Printf("Texture:  %dx%d\n", a.ColorWidth, a.ColorHeight)
	fmt.Printf("Chunks:   %d\n", a.ChunkCount())
	b := a.Bounds
	fmt.Printf("Bounds:   (%.3f, %.3f, %.3f) to (%.3f, %.3f, %.3f)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("Size:     %.2f KB\n", float64(a.DataSize())/1024)
	fmt.Printf("Hash:     %s\n", hex.EncodeToString(a.Hash[:]))
	fmt.Println()
	fmt.Println("Buffers:")
	fmt.Printf("  %-10s %8d bytes\n", "chunks", len(a.ChunkData))
	fmt.Printf("  %-10s %8d bytes\n", "positions", len(a.PosData))
	fmt.Printf("  %-10s %8d bytes\n", "rot/scale", len(a.OtherData))
	fmt.Printf("  %-10s %8d bytes\n", "color", len(a.ColorData))
	fmt.Printf("  %-10s %8d bytes\n", "sh", len(a.SHData))

	if showChunks {
		fmt.Println()
		for i := 0; i < a.ChunkCount(); i++ {
			c := a.Chunk(i)
			pb := c.PosBounds()
			fmt.Printf("  chunk %4d  (%.3f, %.3f, %.3f) to (%.3f, %.3f, %.3f)\n",
				i, pb.Min.X, pb.Min.Y, pb.Min.Z, pb.Max.X, pb.Max.Y, pb.Max.Z)
		}
	}
}

func printSequenceInfo(path string) {
	m, err := splatfile.ParseManifestFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	seq, err := splatfile.LoadSequenceFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sequence: %s\n", path)
	fmt.Printf("Frames:   %d\n", seq.FrameCount())
	fmt.Printf("FPS:      %g\n", seq.FPS)
	fmt.Printf("Duration: %.2fs\n", seq.Duration())
	if b, err := seq.Bounds(); err == nil {
		fmt.Printf("Bounds:   (%.3f, %.3f, %.3f) to (%.3f, %.3f, %.3f)\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
	fmt.Printf("Size:     %.2f MB\n", float64(seq.DataSize())/(1024*1024))
	fmt.Println()

	for i, name := range m.Frames {
		a := seq.Frame(i)
		fmt.Printf("  %-28s %8d splats  %10.1f KB\n",
			name, a.SplatCount, float64(a.DataSize())/1024)
	}
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configPath := fs.String("config", "", "Config file (default: auto-discover)")
	mode := fs.String("mode", "", "Loop mode: once, loop, pingpong")
	speed := fs.Float64("speed", 0, "Playback speed multiplier")
	seconds := fs.Float64("seconds", 0, "Simulated seconds (default: one pass)")
	dt := fs.Float64("dt", 1.0/60, "Simulation tick in seconds")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: splattool play [options] <sequence.yaml>")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Playback.Mode = *mode
	}
	if *speed > 0 {
		cfg.Playback.Speed = *speed
	}

	m, err := playback.ParseLoopMode(cfg.Playback.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	seq, err := splatfile.LoadSequenceFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Playing %d frames at %g fps (%s, %gx)\n",
		seq.FrameCount(), seq.FPS, m, cfg.Playback.Speed)

	elapsed := 0.0
	player := playback.NewPlayer(seq, playback.Options{
		Mode:     m,
		Speed:    cfg.Playback.Speed,
		AutoPlay: true,
		OnFrameChange: func(frame int) {
			fmt.Printf("  t=%7.3fs  frame %4d  %d splats\n",
				elapsed, frame, seq.Frame(frame).SplatCount)
		},
		OnComplete: func() {
			fmt.Println("  sequence complete")
		},
	})

	step := *dt
	if step <= 0 {
		step = 1.0 / 60
	}
	total := *seconds
	if total <= 0 {
		total = seq.Duration() / player.Speed()
	}
	for elapsed < total && !player.Completed() {
		player.Update(step)
		elapsed += step
	}
	fmt.Printf("Stopped on frame %d after %.2fs\n", player.Frame(), elapsed)
}

func cmdInitConfig(args []string) {
	fs := flag.NewFlagSet("initconfig", flag.ExitOnError)
	force := fs.Bool("f", false, "Overwrite an existing file")
	fs.Parse(args)

	path := filepath.Join(config.ConfigDir(), "config.yaml")
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	if !*force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Refusing to overwrite %s (use -f)\n", path)
			os.Exit(1)
		}
	}

	if err := config.Default().SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
