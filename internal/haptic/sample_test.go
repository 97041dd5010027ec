package haptic

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, rate, channels int, data []int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tick.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadSampleWAVUpmixesMono(t *testing.T) {
	path := writeTestWAV(t, sampleRate, 1, []int{1000, -2000, 3000, 0})

	pcm, err := LoadSample(path)
	if err != nil {
		t.Fatalf("LoadSample returned error: %v", err)
	}
	if len(pcm) != 4*channelCount*bitDepth {
		t.Fatalf("expected 4 stereo frames, got %d bytes", len(pcm))
	}
	left := int16(binary.LittleEndian.Uint16(pcm[4:]))
	right := int16(binary.LittleEndian.Uint16(pcm[6:]))
	if left != right {
		t.Fatalf("expected duplicated channels, got %d/%d", left, right)
	}
	if left > -1990 || left < -2010 {
		t.Fatalf("expected second frame near -2000, got %d", left)
	}
}

func TestLoadSampleWAVResamplesAndTruncates(t *testing.T) {
	data := make([]int, 22050) // one second of mono at 22.05 kHz
	path := writeTestWAV(t, 22050, 1, data)

	pcm, err := LoadSample(path)
	if err != nil {
		t.Fatalf("LoadSample returned error: %v", err)
	}
	want := int(maxSampleDuration*sampleRate) * channelCount * bitDepth
	if len(pcm) != want {
		t.Fatalf("expected truncation to %d bytes, got %d", want, len(pcm))
	}
}

func TestLoadSampleRejectsGarbage(t *testing.T) {
	for _, name := range []string{"bad.wav", "bad.mp3", "bad.ogg", "bad.flac"} {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadSample(path); err == nil {
			t.Fatalf("expected error for invalid %s", name)
		}
	}
}

func TestLoadSampleRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tick.aiff")
	if err := os.WriteFile(path, []byte("FORM"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadSample(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported sample format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestRenderPCMUpsamples(t *testing.T) {
	mono := []float64{0, 0.5, 1, 0.5}
	pcm := renderPCM(mono, sampleRate/2)
	if len(pcm) != 8*channelCount*bitDepth {
		t.Fatalf("expected 8 stereo frames, got %d bytes", len(pcm))
	}
	mid := int16(binary.LittleEndian.Uint16(pcm[1*channelCount*bitDepth:]))
	if mid < 8000 || mid > 8400 {
		t.Fatalf("expected interpolated frame near 0.25 full scale, got %d", mid)
	}
}

func TestClickPCMGetsLongerWithWeight(t *testing.T) {
	light, medium, heavy := clickPCM(Light), clickPCM(Medium), clickPCM(Heavy)
	if !(len(light) < len(medium) && len(medium) < len(heavy)) {
		t.Fatalf("expected heavier clicks to be longer: %d, %d, %d", len(light), len(medium), len(heavy))
	}
	if len(light)%(channelCount*bitDepth) != 0 {
		t.Fatalf("expected whole stereo frames, got %d bytes", len(light))
	}
}

// tick.flac holds 4096 frames of 16-bit stereo at 44.1 kHz in a single
// verbatim frame; left is 1000*(i%16)-7000, right is 3000-500*(i%8).
func TestLoadSampleFLACMatchesWAV(t *testing.T) {
	const frames = 4096
	data := make([]int, 0, frames*2)
	for i := range frames {
		data = append(data, 1000*(i%16)-7000, 3000-500*(i%8))
	}
	wavPCM, err := LoadSample(writeTestWAV(t, sampleRate, 2, data))
	if err != nil {
		t.Fatalf("LoadSample(wav) returned error: %v", err)
	}
	flacPCM, err := LoadSample(filepath.Join("testdata", "tick.flac"))
	if err != nil {
		t.Fatalf("LoadSample(flac) returned error: %v", err)
	}
	if len(flacPCM) != frames*channelCount*bitDepth || len(flacPCM) != len(wavPCM) {
		t.Fatalf("expected %d bytes from both, got flac %d wav %d", frames*channelCount*bitDepth, len(flacPCM), len(wavPCM))
	}
	for off := 0; off < len(flacPCM); off += 2 {
		f := int(int16(binary.LittleEndian.Uint16(flacPCM[off:])))
		w := int(int16(binary.LittleEndian.Uint16(wavPCM[off:])))
		if f-w > 1 || w-f > 1 {
			t.Fatalf("byte %d: expected FLAC sample %d to match WAV %d", off, f, w)
		}
	}
	// Frame 5 mixes 5000-7000=-2000 and 3000-2500=500 to -750.
	got := int16(binary.LittleEndian.Uint16(flacPCM[5*channelCount*bitDepth:]))
	if got < -752 || got > -748 {
		t.Fatalf("expected frame 5 near -750, got %d", got)
	}
}
