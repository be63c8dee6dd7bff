// Package splatfile reads and writes encoded splat assets and the sequence
// manifests that group them.
package splatfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arnevik/splatstream/pkg/splat"
)

// Asset container errors.
var (
	ErrInvalidMagic       = errors.New("invalid asset magic: expected 'SPLA'")
	ErrUnsupportedVersion = errors.New("unsupported asset version")
	ErrTruncatedData      = errors.New("truncated asset data")
)

const (
	assetMagic   = "SPLA"
	assetVersion = 1
)

// MarshalAsset serializes an asset into the SPLA container layout.
func MarshalAsset(a *splat.Asset) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to write inconsistent asset: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(int(a.DataSize()) + 128)
	buf.WriteString(assetMagic)

	le := binary.LittleEndian
	for _, v := range []uint32{
		assetVersion,
		uint32(a.SplatCount),
	} {
		binary.Write(&buf, le, v)
	}
	buf.Write([]byte{
		byte(a.PosFormat),
		byte(a.ScaleFormat),
		byte(a.ColorFormat),
		byte(a.SHFormat),
	})
	binary.Write(&buf, le, uint32(a.ColorWidth))
	binary.Write(&buf, le, uint32(a.ColorHeight))
	for _, f := range []float32{
		a.Bounds.Min.X, a.Bounds.Min.Y, a.Bounds.Min.Z,
		a.Bounds.Max.X, a.Bounds.Max.Y, a.Bounds.Max.Z,
	} {
		binary.Write(&buf, le, f)
	}
	buf.Write(a.Hash[:])
	for _, n := range []uint32{
		uint32(len(a.ChunkData)),
		uint32(len(a.PosData)),
		uint32(len(a.OtherData)),
		uint32(len(a.ColorData)),
		uint32(len(a.SHData)),
	} {
		binary.Write(&buf, le, n)
	}
	buf.Write(a.ChunkData)
	buf.Write(a.PosData)
	buf.Write(a.OtherData)
	buf.Write(a.ColorData)
	buf.Write(a.SHData)
	return buf.Bytes(), nil
}

// ParseAsset parses an asset from SPLA container data.
func ParseAsset(data []byte) (*splat.Asset, error) {
	if len(data) < 4 || string(data[:4]) != assetMagic {
		return nil, ErrInvalidMagic
	}
	r := bytes.NewReader(data[4:])
	le := binary.LittleEndian

	var version, count uint32
	if err := binary.Read(r, le, &version); err != nil {
		return nil, ErrTruncatedData
	}
	if version != assetVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if err := binary.Read(r, le, &count); err != nil {
		return nil, ErrTruncatedData
	}

	var tags [4]byte
	if _, err := io.ReadFull(r, tags[:]); err != nil {
		return nil, ErrTruncatedData
	}
	var width, height uint32
	if err := binary.Read(r, le, &width); err != nil {
		return nil, ErrTruncatedData
	}
	if err := binary.Read(r, le, &height); err != nil {
		return nil, ErrTruncatedData
	}
	var bounds [6]float32
	if err := binary.Read(r, le, &bounds); err != nil {
		return nil, ErrTruncatedData
	}

	a := &splat.Asset{
		SplatCount:  int(count),
		PosFormat:   splat.VectorFormat(tags[0]),
		ScaleFormat: splat.VectorFormat(tags[1]),
		ColorFormat: splat.ColorFormat(tags[2]),
		SHFormat:    splat.SHFormat(tags[3]),
		ColorWidth:  int(width),
		ColorHeight: int(height),
	}
	a.Bounds.Min.X, a.Bounds.Min.Y, a.Bounds.Min.Z = bounds[0], bounds[1], bounds[2]
	a.Bounds.Max.X, a.Bounds.Max.Y, a.Bounds.Max.Z = bounds[3], bounds[4], bounds[5]

	if _, err := io.ReadFull(r, a.Hash[:]); err != nil {
		return nil, ErrTruncatedData
	}

	var lens [5]uint32
	if err := binary.Read(r, le, &lens); err != nil {
		return nil, ErrTruncatedData
	}
	var total uint64
	for _, n := range lens {
		total += uint64(n)
	}
	if uint64(r.Len()) != total {
		return nil, fmt.Errorf("%w: %d payload bytes, header claims %d", ErrTruncatedData, r.Len(), total)
	}

	var readErr error
	readBuf := func(n uint32) []byte {
		if n == 0 || readErr != nil {
			return nil
		}
		b := make([]byte, n)
		_, readErr = io.ReadFull(r, b)
		return b
	}
	a.ChunkData = readBuf(lens[0])
	a.PosData = readBuf(lens[1])
	a.OtherData = readBuf(lens[2])
	a.ColorData = readBuf(lens[3])
	a.SHData = readBuf(lens[4])
	if readErr != nil {
		return nil, ErrTruncatedData
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid asset: %w", err)
	}
	return a, nil
}

// ParseAssetFile reads and parses an asset container from disk.
func ParseAssetFile(path string) (*splat.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset file: %w", err)
	}
	return ParseAsset(data)
}

// WriteAssetFile serializes an asset to disk.
func WriteAssetFile(path string, a *splat.Asset) error {
	data, err := MarshalAsset(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing asset file: %w", err)
	}
	return nil
}
