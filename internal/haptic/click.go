package haptic

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 2 // 16-bit = 2 bytes
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// Click renders a pulse as a short percussive tick on the default audio
// device, standing in for a vibration motor on hosts that have none.
type Click struct {
	ctx    *oto.Context
	pcm    []byte
	volume float64

	mu      sync.Mutex
	players []*oto.Player
	closed  bool
}

// NewClick synthesizes a tick for style.
func NewClick(style Style, volume float64) (*Click, error) {
	return NewClickFromPCM(clickPCM(style), volume)
}

// NewClickFromPCM plays pcm (signed 16-bit little-endian stereo at 44.1 kHz)
// on every pulse.
func NewClickFromPCM(pcm []byte, volume float64) (*Click, error) {
	ctx, err := initOto()
	if err != nil {
		return nil, err
	}
	return &Click{ctx: ctx, pcm: pcm, volume: clampVolume(volume)}, nil
}

// Pulse starts the tick without waiting for it to finish. Overlapping
// pulses mix.
func (c *Click) Pulse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.reapLocked()

	p := c.ctx.NewPlayer(newPCMReader(c.pcm))
	p.SetVolume(c.volume)
	p.Play()
	c.players = append(c.players, p)
}

// reapLocked closes players that have finished.
func (c *Click) reapLocked() {
	live := c.players[:0]
	for _, p := range c.players {
		if p.IsPlaying() {
			live = append(live, p)
			continue
		}
		_ = p.Close()
	}
	c.players = live
}

// Close stops any ticks still playing.
func (c *Click) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var firstErr error
	for _, p := range c.players {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.players = nil
	return firstErr
}

func clampVolume(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0.6
	}
	if v > 1 {
		return 1
	}
	return v
}

// clickPCM synthesizes an exponentially damped sine burst. Heavier styles
// are longer and lower.
func clickPCM(style Style) []byte {
	var (
		dur  float64
		freq float64
		tau  float64
	)
	switch style {
	case Heavy:
		dur, freq, tau = 0.022, 900, 0.006
	case Medium:
		dur, freq, tau = 0.012, 1600, 0.0035
	default:
		dur, freq, tau = 0.006, 2400, 0.0018
	}

	frames := int(dur * sampleRate)
	out := make([]byte, frames*channelCount*bitDepth)
	for i := range frames {
		t := float64(i) / sampleRate
		v := math.Sin(2*math.Pi*freq*t) * math.Exp(-t/tau)
		s := int16(v * math.MaxInt16 * 0.9)
		off := i * channelCount * bitDepth
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		binary.LittleEndian.PutUint16(out[off+2:], uint16(s))
	}
	return out
}
