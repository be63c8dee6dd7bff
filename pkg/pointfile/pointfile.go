// Package pointfile reads and writes raw splat captures: flat little-endian
// records of full-precision splat attributes, one file per frame. It is the
// interchange format the converter ingests.
package pointfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"

	"github.com/arnevik/splatstream/pkg/math"
	"github.com/arnevik/splatstream/pkg/splat"
)

// SPCF format errors.
var (
	ErrInvalidMagic       = errors.New("invalid point file magic: expected 'SPCF'")
	ErrUnsupportedVersion = errors.New("unsupported point file version")
	ErrTruncatedData      = errors.New("truncated point file data")
)

const (
	pointMagic   = "SPCF"
	pointVersion = 1

	// recordSize is one splat as 59 float32s: position 3, rotation 4,
	// scale 3, opacity 1, color 3 and 15 SH coefficient vectors.
	recordSize = 59 * 4
)

// Marshal serializes points into SPCF data.
func Marshal(points []splat.Splat) []byte {
	buf := make([]byte, 12+len(points)*recordSize)
	copy(buf, pointMagic)
	le := binary.LittleEndian
	le.PutUint32(buf[4:], pointVersion)
	le.PutUint32(buf[8:], uint32(len(points)))

	o := 12
	put := func(f float32) {
		le.PutUint32(buf[o:], gomath.Float32bits(f))
		o += 4
	}
	putVec := func(v math.Vec3) {
		put(v.X)
		put(v.Y)
		put(v.Z)
	}
	for i := range points {
		s := &points[i]
		putVec(s.Pos)
		put(s.Rot.X)
		put(s.Rot.Y)
		put(s.Rot.Z)
		put(s.Rot.W)
		putVec(s.Scale)
		put(s.Opacity)
		putVec(s.Color)
		for k := range s.SH {
			putVec(s.SH[k])
		}
	}
	return buf
}

// Parse parses SPCF data back into splat records.
func Parse(data []byte) ([]splat.Splat, error) {
	if len(data) < 4 || string(data[:4]) != pointMagic {
		return nil, ErrInvalidMagic
	}
	r := bytes.NewReader(data[4:])
	le := binary.LittleEndian

	var version, count uint32
	if err := binary.Read(r, le, &version); err != nil {
		return nil, ErrTruncatedData
	}
	if version != pointVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err := binary.Read(r, le, &count); err != nil {
		return nil, ErrTruncatedData
	}
	if uint64(r.Len()) != uint64(count)*recordSize {
		return nil, fmt.Errorf("%w: %d payload bytes for %d records", ErrTruncatedData, r.Len(), count)
	}

	raw := make([]byte, r.Len())
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, ErrTruncatedData
	}

	points := make([]splat.Splat, count)
	for i := range points {
		rec := raw[i*recordSize:]
		o := 0
		get := func() float32 {
			f := gomath.Float32frombits(le.Uint32(rec[o:]))
			o += 4
			return f
		}
		getVec := func() math.Vec3 {
			return math.Vec3{X: get(), Y: get(), Z: get()}
		}
		s := &points[i]
		s.Pos = getVec()
		s.Rot = math.Quat{X: get(), Y: get(), Z: get(), W: get()}
		s.Scale = getVec()
		s.Opacity = get()
		s.Color = getVec()
		for k := range s.SH {
			s.SH[k] = getVec()
		}
	}
	return points, nil
}

// ParseFile reads and parses a point file from disk.
func ParseFile(path string) ([]splat.Splat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading point file: %w", err)
	}
	return Parse(data)
}

// WriteFile serializes points to disk.
func WriteFile(path string, points []splat.Splat) error {
	if err := os.WriteFile(path, Marshal(points), 0644); err != nil {
		return fmt.Errorf("writing point file: %w", err)
	}
	return nil
}
