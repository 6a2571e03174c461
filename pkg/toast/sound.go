package toast

import (
	"math"
	"time"

	"github.com/dmitrymomot/internhub/pkg/notifications"
)

const (
	// ToneDuration is the length of each tone in a contour.
	ToneDuration = 120 * time.Millisecond

	// DefaultSampleRate is used by SynthPlayer when none is configured.
	DefaultSampleRate = 44100

	toneGain  = 0.3
	toneFloor = 0.01
)

var contours = map[notifications.Sound][]float64{
	notifications.SoundNotification: {800, 600},
	notifications.SoundSuccess:      {523.25, 659.25, 783.99},
	notifications.SoundAlert:        {880, 660, 880},
	notifications.SoundError:        {400, 300, 200},
}

// Contour returns the tone frequencies, in Hz, played for sound.
// Unknown sounds fall back to the notification contour.
func Contour(sound notifications.Sound) []float64 {
	c, ok := contours[sound]
	if !ok {
		c = contours[notifications.SoundNotification]
	}
	out := make([]float64, len(c))
	copy(out, c)
	return out
}

// Synthesize renders the contour of sound as mono PCM samples in [-1, 1].
// Tones play back to back, each decaying exponentially from toneGain to toneFloor.
func Synthesize(sound notifications.Sound, sampleRate int) []float32 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	freqs := Contour(sound)
	perTone := int(float64(sampleRate) * ToneDuration.Seconds())
	out := make([]float32, 0, perTone*len(freqs))

	// gain(t) = toneGain * (toneFloor/toneGain)^(t/T)
	decay := math.Log(toneFloor/toneGain) / float64(perTone)
	for _, f := range freqs {
		step := 2 * math.Pi * f / float64(sampleRate)
		for i := range perTone {
			gain := toneGain * math.Exp(decay*float64(i))
			out = append(out, float32(gain*math.Sin(step*float64(i))))
		}
	}
	return out
}

// Player plays the audio cue of a sound. Playback is best effort.
type Player interface {
	Play(sound notifications.Sound) error
}

// NopPlayer plays nothing.
type NopPlayer struct{}

func (NopPlayer) Play(notifications.Sound) error { return nil }

// Sink receives rendered PCM samples, e.g. an audio device writer.
type Sink func(samples []float32, sampleRate int) error

// SynthPlayer renders contours with Synthesize and hands them to a Sink.
type SynthPlayer struct {
	sink       Sink
	sampleRate int
}

// NewSynthPlayer creates a player writing to sink at sampleRate (0 = DefaultSampleRate).
func NewSynthPlayer(sink Sink, sampleRate int) *SynthPlayer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &SynthPlayer{sink: sink, sampleRate: sampleRate}
}

func (p *SynthPlayer) Play(sound notifications.Sound) error {
	if p.sink == nil {
		return ErrNoAudioSink
	}
	return p.sink(Synthesize(sound, p.sampleRate), p.sampleRate)
}
