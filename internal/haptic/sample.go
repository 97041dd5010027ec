package haptic

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// maxSampleDuration bounds a custom click; anything longer is truncated.
const maxSampleDuration = 0.5

func newPCMReader(pcm []byte) io.Reader {
	return bytes.NewReader(pcm)
}

// sampleDecoder reads at most maxSampleDuration seconds of audio mixed down
// to mono floats in [-1, 1], plus the source sample rate.
type sampleDecoder func(f *os.File) ([]float64, int, error)

var sampleDecoders = map[string]sampleDecoder{
	".wav":  decodeWAV,
	".mp3":  decodeMP3,
	".ogg":  decodeOGG,
	".oga":  decodeOGG,
	".flac": decodeFLAC,
}

// LoadSample reads a short audio file and converts it to the 16-bit stereo
// 44.1 kHz PCM that Click plays. The format follows the file extension
// (WAV, MP3, Ogg Vorbis or FLAC). Other rates are linearly resampled and the
// result is truncated to half a second.
func LoadSample(path string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := sampleDecoders[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported sample format %q (must be .wav, .mp3, .ogg or .flac)", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mono, rate, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading sample %s: %w", path, err)
	}
	if len(mono) == 0 {
		return nil, fmt.Errorf("loading sample %s: no audio frames", path)
	}
	return renderPCM(mono, rate), nil
}

// sourceFrameLimit is how many source frames cover maxSampleDuration.
func sourceFrameLimit(rate int) int {
	return int(math.Ceil(maxSampleDuration * float64(rate)))
}

// renderPCM resamples a mono signal to the output rate and writes it to
// both channels.
func renderPCM(mono []float64, srcRate int) []byte {
	if srcRate <= 0 {
		srcRate = sampleRate
	}
	outFrames := int(float64(len(mono)) * sampleRate / float64(srcRate))
	if limit := int(maxSampleDuration * sampleRate); outFrames > limit {
		outFrames = limit
	}
	out := make([]byte, outFrames*channelCount*bitDepth)
	for i := range outFrames {
		v := resampleAt(mono, float64(i)*float64(srcRate)/sampleRate)
		s := int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
		off := i * channelCount * bitDepth
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		binary.LittleEndian.PutUint16(out[off+2:], uint16(s))
	}
	return out
}

// normalizeSample maps an integer sample of the given bit depth to [-1, 1].
// 8-bit WAV is unsigned.
func normalizeSample(v, depth int) float64 {
	switch depth {
	case 8:
		return float64(v-128) / 128
	case 24:
		return float64(v) / (1 << 23)
	case 32:
		return float64(v) / (1 << 31)
	default:
		return float64(v) / (1 << 15)
	}
}

func resampleAt(src []float64, pos float64) float64 {
	if len(src) == 0 {
		return 0
	}
	i := int(pos)
	if i >= len(src)-1 {
		return src[len(src)-1]
	}
	frac := pos - float64(i)
	return src[i]*(1-frac) + src[i+1]*frac
}
