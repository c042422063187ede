package archive

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/AmrMurad1/Go-Backup/shared"
)

type Codec string

const (
	Zlib Codec = "zlib"
	Zstd Codec = "zstd"
	S2   Codec = "s2"
	LZ4  Codec = "lz4"
)

// klauspost flate levels 7-9 stall on long runs of a single byte; 6 is the
// strongest level served by the linear encoders.
const zlibLevel = 6

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
	s2Magic   = []byte("\xff\x06\x00\x00S2sTwO")
	snapMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

func ParseCodec(name string) (Codec, error) {
	switch c := Codec(strings.ToLower(name)); c {
	case Zlib, Zstd, S2, LZ4:
		return c, nil
	case "":
		return Zstd, nil
	default:
		return "", fmt.Errorf("%w: unsupported compression type: %s", shared.ErrInvalidConfiguration, name)
	}
}

// Compressor compresses whole files at a high ratio. Output is
// deterministic for a given input, which change detection relies on.
type Compressor struct {
	codec Codec
	buf   bytes.Buffer
	zw    *zlib.Writer
	zenc  *zstd.Encoder
}

func NewCompressor(c Codec) (*Compressor, error) {
	if _, err := ParseCodec(string(c)); err != nil {
		return nil, err
	}
	comp := &Compressor{codec: c}
	if c == Zstd {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBestCompression),
			zstd.WithEncoderConcurrency(1),
			zstd.WithZeroFrames(true))
		if err != nil {
			return nil, err
		}
		comp.zenc = enc
	}
	return comp, nil
}

func (c *Compressor) Codec() Codec { return c.codec }

// Compress returns the compressed form of data in a newly allocated slice.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if c.codec == Zstd {
		return c.zenc.EncodeAll(data, make([]byte, 0, len(data)/2+64)), nil
	}

	c.buf.Reset()
	var w io.WriteCloser
	switch c.codec {
	case Zlib:
		if c.zw == nil {
			zw, err := zlib.NewWriterLevel(&c.buf, zlibLevel)
			if err != nil {
				return nil, err
			}
			c.zw = zw
		} else {
			c.zw.Reset(&c.buf)
		}
		w = c.zw
	case S2:
		w = s2.NewWriter(&c.buf, s2.WriterBestCompression(), s2.WriterConcurrency(1))
	case LZ4:
		zw := lz4.NewWriter(&c.buf)
		if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
			return nil, err
		}
		w = zw
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s compress: %w", c.codec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s compress: %w", c.codec, err)
	}
	if c.buf.Len() == 0 && c.codec == S2 {
		// an s2 stream with no blocks still needs its identifier chunk
		c.buf.Write(s2Magic)
	}
	return bytes.Clone(c.buf.Bytes()), nil
}

func (c *Compressor) Close() error {
	if c.zenc != nil {
		return c.zenc.Close()
	}
	return nil
}

// Detect identifies the codec of a compressed payload from its header.
func Detect(payload []byte) (Codec, error) {
	switch {
	case bytes.HasPrefix(payload, zstdMagic):
		return Zstd, nil
	case bytes.HasPrefix(payload, lz4Magic):
		return LZ4, nil
	case bytes.HasPrefix(payload, s2Magic), bytes.HasPrefix(payload, snapMagic):
		return S2, nil
	case len(payload) >= 2 && payload[0]&0x0f == 8 && (uint16(payload[0])<<8|uint16(payload[1]))%31 == 0:
		return Zlib, nil
	}
	return "", fmt.Errorf("%w: unknown payload compression", shared.ErrCorruptArchive)
}

var decoderPool sync.Pool

func getDecoder() (*zstd.Decoder, error) {
	if d, ok := decoderPool.Get().(*zstd.Decoder); ok {
		return d, nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
}

// Decompress restores a payload produced by any supported codec.
func Decompress(payload []byte) ([]byte, error) {
	c, err := Detect(payload)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	switch c {
	case Zstd:
		dec, err := getDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer decoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", shared.ErrCorruptArchive, err)
		}
		return out, nil
	case Zlib:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", shared.ErrCorruptArchive, err)
		}
		defer zr.Close()
		r = zr
	case S2:
		r = s2.NewReader(bytes.NewReader(payload))
	case LZ4:
		r = lz4.NewReader(bytes.NewReader(payload))
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptArchive, c, err)
	}
	return out, nil
}
