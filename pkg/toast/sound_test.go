package toast

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/internhub/pkg/notifications"
)

func TestContour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sound notifications.Sound
		want  []float64
	}{
		{notifications.SoundNotification, []float64{800, 600}},
		{notifications.SoundSuccess, []float64{523.25, 659.25, 783.99}},
		{notifications.SoundAlert, []float64{880, 660, 880}},
		{notifications.SoundError, []float64{400, 300, 200}},
		{notifications.Sound("chime"), []float64{800, 600}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sound), func(t *testing.T) {
			assert.Equal(t, tt.want, Contour(tt.sound))
		})
	}

	c := Contour(notifications.SoundAlert)
	c[0] = 1
	assert.Equal(t, 880.0, Contour(notifications.SoundAlert)[0], "callers get a copy")
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	const rate = 8000
	perTone := int(rate * ToneDuration.Seconds())

	samples := Synthesize(notifications.SoundSuccess, rate)
	require.Len(t, samples, 3*perTone)

	for _, s := range samples {
		assert.LessOrEqual(t, math.Abs(float64(s)), toneGain+1e-6)
	}

	// Envelope decays within each tone: the tail is much quieter than the head.
	peak := func(from, to int) float64 {
		var p float64
		for _, s := range samples[from:to] {
			p = math.Max(p, math.Abs(float64(s)))
		}
		return p
	}
	head := peak(0, perTone/10)
	tail := peak(perTone-perTone/10, perTone)
	assert.Greater(t, head, 5*tail)

	assert.Len(t, Synthesize(notifications.SoundError, 0), 3*int(DefaultSampleRate*ToneDuration.Seconds()))
}

func TestSynthPlayer(t *testing.T) {
	t.Parallel()

	var gotRate, gotLen int
	p := NewSynthPlayer(func(samples []float32, rate int) error {
		gotRate, gotLen = rate, len(samples)
		return nil
	}, 16000)

	require.NoError(t, p.Play(notifications.SoundNotification))
	assert.Equal(t, 16000, gotRate)
	assert.Equal(t, 2*int(16000*ToneDuration.Seconds()), gotLen)

	failing := NewSynthPlayer(func([]float32, int) error { return errors.New("device busy") }, 0)
	assert.Error(t, failing.Play(notifications.SoundAlert))

	assert.ErrorIs(t, NewSynthPlayer(nil, 0).Play(notifications.SoundAlert), ErrNoAudioSink)
	assert.NoError(t, NopPlayer{}.Play(notifications.SoundAlert))
}
