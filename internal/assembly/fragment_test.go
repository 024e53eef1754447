package assembly

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func chunkOf(b byte, size int) Chunk {
	data := make([]byte, size)
	for i := range data {
		data[i] = b
	}
	return Chunk{Data: data, MIMEType: "audio/L16;rate=24000"}
}

func TestBuildFragmentDeduplicatesChunks(t *testing.T) {
	chunk := chunkOf(0xAA, 512)
	frag, err := BuildFragment(0, []Chunk{chunk, chunk, chunkOf(0xBB, 512)})
	if err != nil {
		t.Fatalf("BuildFragment failed: %v", err)
	}
	wantData := 512 + 512
	if len(frag.Data) != wavHeaderSize+wantData {
		t.Fatalf("expected %d bytes after dedup, got %d", wavHeaderSize+wantData, len(frag.Data))
	}
	if count := bytes.Count(frag.Data[wavHeaderSize:], chunk.Data); count != 1 {
		t.Fatalf("duplicate chunk appears %d times, want 1", count)
	}
}

func TestBuildFragmentDropsUndersizedChunks(t *testing.T) {
	frag, err := BuildFragment(0, []Chunk{chunkOf(0x01, 64), chunkOf(0x02, 512)})
	if err != nil {
		t.Fatalf("BuildFragment failed: %v", err)
	}
	if len(frag.Data) != wavHeaderSize+512 {
		t.Fatalf("expected small chunk dropped, got %d bytes", len(frag.Data))
	}

	if _, err := BuildFragment(0, []Chunk{chunkOf(0x01, 64)}); err == nil {
		t.Fatal("expected error when every chunk is undersized")
	}
}

func TestBuildFragmentSynthesizesWAVHeader(t *testing.T) {
	frag, err := BuildFragment(3, []Chunk{chunkOf(0xCC, 1024)})
	if err != nil {
		t.Fatalf("BuildFragment failed: %v", err)
	}
	if frag.MIMEType != "audio/wav" {
		t.Fatalf("expected audio/wav, got %s", frag.MIMEType)
	}
	header := frag.Data[:wavHeaderSize]
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		t.Fatalf("bad container markers: %q %q", header[0:4], header[8:12])
	}
	if rate := binary.LittleEndian.Uint32(header[24:28]); rate != 24000 {
		t.Fatalf("expected sample rate 24000, got %d", rate)
	}
	if channels := binary.LittleEndian.Uint16(header[22:24]); channels != 1 {
		t.Fatalf("expected mono, got %d channels", channels)
	}
	if dataLen := binary.LittleEndian.Uint32(header[40:44]); dataLen != 1024 {
		t.Fatalf("expected data length 1024, got %d", dataLen)
	}
	if frag.SceneIndex != 3 {
		t.Fatalf("scene index lost: %d", frag.SceneIndex)
	}
}

func TestBuildFragmentLeavesContainersAlone(t *testing.T) {
	data := make([]byte, 512)
	frag, err := BuildFragment(0, []Chunk{{Data: data, MIMEType: "audio/mpeg"}})
	if err != nil {
		t.Fatalf("BuildFragment failed: %v", err)
	}
	if frag.MIMEType != "audio/mpeg" {
		t.Fatalf("container mime rewritten to %s", frag.MIMEType)
	}
	if len(frag.Data) != 512 {
		t.Fatalf("container data resized to %d bytes", len(frag.Data))
	}
}

func TestPlaceholderFragment(t *testing.T) {
	frag := PlaceholderFragment(4, 30)
	if !frag.Placeholder {
		t.Fatal("placeholder flag not set")
	}
	if frag.SceneIndex != 4 {
		t.Fatalf("scene index lost: %d", frag.SceneIndex)
	}
	if frag.DurationSeconds != 30 {
		t.Fatalf("expected 30s, got %v", frag.DurationSeconds)
	}
	if len(frag.Data) != 0 {
		t.Fatalf("placeholder should carry no data, got %d bytes", len(frag.Data))
	}
	if frag.MIMEType != "audio/wav" {
		t.Fatalf("mime = %q", frag.MIMEType)
	}

	floored := PlaceholderFragment(0, 1)
	if floored.DurationSeconds != minFragmentSeconds {
		t.Fatalf("expected floor %v, got %v", minFragmentSeconds, floored.DurationSeconds)
	}
}

func TestEstimateDuration(t *testing.T) {
	format := sampleFormat{Channels: 1, SampleRate: 24000, BitDepth: 16}
	// 48000 bytes/second at these parameters.
	if got := estimateDuration(480000, format); got != 10 {
		t.Fatalf("expected 10s, got %v", got)
	}
	if got := estimateDuration(100, format); got != minFragmentSeconds {
		t.Fatalf("expected floor %v, got %v", minFragmentSeconds, got)
	}
	if got := estimateDuration(100, sampleFormat{}); got != minFragmentSeconds {
		t.Fatalf("expected floor for zero byte rate, got %v", got)
	}
}

func TestParseSampleFormat(t *testing.T) {
	cases := []struct {
		name string
		mime string
		want sampleFormat
	}{
		{"defaults", "audio/L16", sampleFormat{Channels: 1, SampleRate: 24000, BitDepth: 16}},
		{"rate param", "audio/L16;rate=44100", sampleFormat{Channels: 1, SampleRate: 44100, BitDepth: 16}},
		{"all params", "audio/L16;rate=48000;channels=2;bits=16", sampleFormat{Channels: 2, SampleRate: 48000, BitDepth: 16}},
		{"l24 depth", "audio/L24;rate=48000", sampleFormat{Channels: 1, SampleRate: 48000, BitDepth: 24}},
		{"garbage params", "audio/L16;rate=abc;channels=-2", sampleFormat{Channels: 1, SampleRate: 24000, BitDepth: 16}},
		{"empty mime", "", sampleFormat{Channels: 1, SampleRate: 24000, BitDepth: 16}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseSampleFormat(tc.mime); got != tc.want {
				t.Fatalf("parseSampleFormat(%q) = %+v, want %+v", tc.mime, got, tc.want)
			}
		})
	}
}

func TestIsRawPCM(t *testing.T) {
	if !isRawPCM("audio/L16;rate=24000") {
		t.Fatal("L16 should be raw PCM")
	}
	if isRawPCM("audio/mpeg") {
		t.Fatal("mpeg is not raw PCM")
	}
}
