package haptic

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

func decodeWAV(f *os.File) ([]float64, int, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, 0, errors.New("WAV file has no audio format")
	}

	channels := buf.Format.NumChannels
	rate := buf.Format.SampleRate
	if rate <= 0 {
		rate = sampleRate
	}
	depth := int(dec.BitDepth)

	frames := min(len(buf.Data)/channels, sourceFrameLimit(rate))
	mono := make([]float64, frames)
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += normalizeSample(buf.Data[i*channels+ch], depth)
		}
		mono[i] = sum / float64(channels)
	}
	return mono, rate, nil
}

// decodeMP3 relies on go-mp3 always producing 16-bit stereo.
func decodeMP3(f *os.File) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding MP3: %w", err)
	}
	rate := dec.SampleRate()
	const frameSize = 4

	raw, err := io.ReadAll(io.LimitReader(dec, int64(sourceFrameLimit(rate)*frameSize)))
	if err != nil {
		return nil, 0, fmt.Errorf("decoding MP3: %w", err)
	}
	frames := len(raw) / frameSize
	mono := make([]float64, frames)
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(raw[i*frameSize:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*frameSize+2:]))
		mono[i] = (float64(l) + float64(r)) / 2 / (1 << 15)
	}
	return mono, rate, nil
}

func decodeOGG(f *os.File) ([]float64, int, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding OGG: %w", err)
	}
	channels := reader.Channels()
	rate := reader.SampleRate()
	if channels <= 0 {
		return nil, 0, errors.New("decoding OGG: no channels")
	}

	limit := sourceFrameLimit(rate)
	mono := make([]float64, 0, limit)
	samples := make([]float32, 4096*channels)
	for len(mono) < limit {
		n, err := reader.Read(samples)
		for i := 0; i+channels <= n && len(mono) < limit; i += channels {
			var sum float64
			for ch := range channels {
				sum += float64(samples[i+ch])
			}
			mono = append(mono, sum/float64(channels))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("decoding OGG: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return mono, rate, nil
}

func decodeFLAC(f *os.File) ([]float64, int, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	rate := int(info.SampleRate)
	if channels <= 0 || info.BitsPerSample == 0 {
		return nil, 0, errors.New("decoding FLAC: missing stream info")
	}
	scale := float64(int64(1) << (info.BitsPerSample - 1))

	limit := sourceFrameLimit(rate)
	mono := make([]float64, 0, limit)
	for len(mono) < limit {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("decoding FLAC: %w", err)
		}
		n := frame.Subframes[0].NSamples
		for i := 0; i < n && len(mono) < limit; i++ {
			var sum float64
			for ch := range channels {
				sum += float64(frame.Subframes[ch].Samples[i])
			}
			mono = append(mono, sum/float64(channels)/scale)
		}
	}
	return mono, rate, nil
}
