package splatfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/arnevik/splatstream/pkg/splat"
)

// Manifest errors.
var (
	ErrInvalidManifest            = errors.New("invalid sequence manifest")
	ErrUnsupportedManifestVersion = errors.New("unsupported sequence manifest version")
)

// ManifestVersion identifies the sequence manifest schema.
const ManifestVersion = 1

// SequenceManifest lists the asset files of one playable sequence in frame
// order. Paths are relative to the manifest file.
type SequenceManifest struct {
	Version int      `yaml:"version"`
	FPS     float64  `yaml:"fps"`
	Frames  []string `yaml:"frames"`
}

// ParseManifest parses and validates a sequence manifest document.
func ParseManifest(data []byte) (*SequenceManifest, error) {
	var m SequenceManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedManifestVersion, m.Version)
	}
	if m.FPS <= 0 {
		return nil, fmt.Errorf("%w: frame rate %v", ErrInvalidManifest, m.FPS)
	}
	return &m, nil
}

// ParseManifestFile reads and parses a sequence manifest from disk.
func ParseManifestFile(path string) (*SequenceManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file: %w", err)
	}
	return ParseManifest(data)
}

// WriteManifestFile serializes a manifest to disk as YAML.
func WriteManifestFile(path string, m *SequenceManifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest file: %w", err)
	}
	return nil
}

// LoadSequenceFile reads a manifest and every asset it names, resolving
// frame paths relative to the manifest's directory.
func LoadSequenceFile(path string) (*splat.Sequence, error) {
	m, err := ParseManifestFile(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	seq := &splat.Sequence{
		Frames: make([]*splat.Asset, 0, len(m.Frames)),
		FPS:    m.FPS,
	}
	for _, name := range m.Frames {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, name)
		}
		a, err := ParseAssetFile(p)
		if err != nil {
			return nil, fmt.Errorf("frame %q: %w", name, err)
		}
		seq.Frames = append(seq.Frames, a)
	}
	return seq, nil
}
