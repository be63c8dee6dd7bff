package splat

// Sequence is an ordered run of encoded frames plus the rate they were
// captured at. Frame order is playback order.
type Sequence struct {
	Frames []*Asset
	FPS    float64
}

// FrameCount returns the number of frames; a nil sequence has none.
func (s *Sequence) FrameCount() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Frame returns the i-th frame, nil when out of range.
func (s *Sequence) Frame(i int) *Asset {
	if s == nil || i < 0 || i >= len(s.Frames) {
		return nil
	}
	return s.Frames[i]
}

// Duration returns the total playback time in seconds.
func (s *Sequence) Duration() float64 {
	if s == nil || s.FPS <= 0 {
		return 0
	}
	return float64(len(s.Frames)) / s.FPS
}

// Bounds returns the union of all frame bounds, the volume the sequence
// sweeps during playback.
func (s *Sequence) Bounds() (Bounds, error) {
	if s.FrameCount() == 0 {
		return Bounds{}, ErrNoSplats
	}
	b := s.Frames[0].Bounds
	for _, f := range s.Frames[1:] {
		b = b.Union(f.Bounds)
	}
	return b, nil
}

// DataSize returns the total encoded size of all frames in bytes.
func (s *Sequence) DataSize() int64 {
	var total int64
	for i := 0; i < s.FrameCount(); i++ {
		total += s.Frames[i].DataSize()
	}
	return total
}
