//go:build !rtinfo_minimal

package rtinfo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

var compressSample = bytes.Repeat([]byte("rtinfo runtime report "), 256)

func init() {
	for _, c := range []struct {
		imp, module string
		codec       func([]byte) (int, []byte, error)
	}{
		{"github.com/klauspost/compress/zstd", "github.com/klauspost/compress", zstdRoundTrip},
		{"github.com/pierrec/lz4/v4", "", lz4RoundTrip},
		{"github.com/ulikunitz/xz", "", xzRoundTrip},
	} {
		codec := c.codec
		Register(BindingSpec{
			Import: c.imp,
			Module: c.module,
			Load: func() error {
				_, _, err := codec(compressSample)
				return err
			},
			Attrs: map[string]func() (string, error){
				"roundtrip": func() (string, error) {
					return describeRoundTrip(codec, compressSample)
				},
			},
		})
	}
}

func describeRoundTrip(codec func([]byte) (int, []byte, error), src []byte) (string, error) {
	n, out, err := codec(src)
	if err != nil {
		return "", err
	}
	if !bytes.Equal(out, src) {
		return "", fmt.Errorf("round trip mismatch")
	}
	return fmt.Sprintf("Ok %d -> %d bytes", len(src), n), nil
}

func zstdRoundTrip(src []byte) (int, []byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return 0, nil, err
	}
	compressed := enc.EncodeAll(src, nil)
	enc.Close()

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return 0, nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, nil)
	return len(compressed), out, err
}

func lz4RoundTrip(src []byte) (int, []byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, buf, nil)
	if err != nil {
		return 0, nil, err
	}
	out := make([]byte, len(src))
	m, err := lz4.UncompressBlock(buf[:n], out)
	if err != nil {
		return 0, nil, err
	}
	return n, out[:m], nil
}

func xzRoundTrip(src []byte) (int, []byte, error) {
	var compressed bytes.Buffer
	w, err := xz.NewWriter(&compressed)
	if err != nil {
		return 0, nil, err
	}
	if _, err := w.Write(src); err != nil {
		return 0, nil, err
	}
	if err := w.Close(); err != nil {
		return 0, nil, err
	}
	n := compressed.Len()

	r, err := xz.NewReader(&compressed)
	if err != nil {
		return 0, nil, err
	}
	out, err := io.ReadAll(r)
	return n, out, err
}
