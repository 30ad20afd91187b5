package utils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jxl codestream", []byte{0xFF, 0x0A, 0xFA, 0x7F}, formatJXL},
		{"jxl container", append(append([]byte{}, jxlContainer...), 0, 0, 0, 0x14), formatJXL},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, formatJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, formatPNG},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), formatWebP},
		{"short", []byte{0xFF}, formatUnknown},
		{"text", []byte("hello, world"), formatUnknown},
		{"truncated container", jxlContainer[:6], formatUnknown},
	}
	for _, tc := range tests {
		if got := DetectFormat(tc.data); got != tc.want {
			t.Errorf("%s: DetectFormat = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestContentTypeFormat(t *testing.T) {
	if got := ContentTypeFormat("image/jxl"); got != formatJXL {
		t.Errorf("image/jxl -> %q", got)
	}
	if got := ContentTypeFormat("application/octet-stream"); got != formatUnknown {
		t.Errorf("octet-stream -> %q", got)
	}
}

func TestLimitedReader(t *testing.T) {
	data := bytes.Repeat([]byte{1}, 100)

	buf, err := DrainReader(context.Background(), &LimitedReader{R: bytes.NewReader(data), Max: 100}, 7)
	if err != nil {
		t.Fatalf("exact size: %v", err)
	}
	if buf.Len() != 100 {
		t.Errorf("read %d bytes, want 100", buf.Len())
	}
	ReleaseBuffer(buf)

	_, err = DrainReader(context.Background(), &LimitedReader{R: bytes.NewReader(data), Max: 99}, 7)
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("over limit: %v, want ErrLimitExceeded", err)
	}

	n, err := io.Copy(io.Discard, &LimitedReader{R: bytes.NewReader(data)})
	if err != nil || n != 100 {
		t.Errorf("unlimited: %d, %v", n, err)
	}
}

func TestDrainReader_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DrainReader(ctx, bytes.NewReader([]byte{1}), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("DrainReader = %v, want context.Canceled", err)
	}
}
