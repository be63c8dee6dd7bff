package splat

import "errors"

// Codec errors.
var (
	ErrNoSplats      = errors.New("empty splat set")
	ErrUnknownFormat = errors.New("unknown encoding format")
	ErrNoCompressor  = errors.New("block-compressed color requested without a texture compressor")
	ErrBufferSize    = errors.New("encoded buffer size mismatch")
	ErrNotDecodable  = errors.New("block-compressed color cannot be decoded on the CPU")
)
