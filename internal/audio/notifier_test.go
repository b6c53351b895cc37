package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tomato/internal/config"
)

type fakeSounder struct {
	mu          sync.Mutex
	err         error
	played      []string
	preloaded   []string
	volume      float64
	invalidated []string
}

func (f *fakeSounder) Play(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, path)
	return f.err
}

func (f *fakeSounder) Preload(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preloaded = append(f.preloaded, path)
	return f.err
}

func (f *fakeSounder) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
}

func (f *fakeSounder) InvalidateCache(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, path)
}

func (f *fakeSounder) invalidatedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invalidated...)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNotifier_PlaysConfiguredSound(t *testing.T) {
	sounder := &fakeSounder{}
	var out syncBuffer
	n := NewNotifier(config.AudioConfig{Enabled: true, Volume: 50, Sound: "/sounds/ding.wav"}, sounder, &out, nil)

	n.Play()
	n.Wait()

	assert.Equal(t, []string{"/sounds/ding.wav"}, sounder.played)
	assert.InDelta(t, 0.5, sounder.volume, 1e-9)
	assert.Empty(t, out.String())
}

func TestNotifier_BellWithoutSound(t *testing.T) {
	sounder := &fakeSounder{}
	var out syncBuffer
	n := NewNotifier(config.AudioConfig{Enabled: true, Volume: 80}, sounder, &out, nil)

	n.Play()
	n.Play()
	n.Wait()

	assert.Empty(t, sounder.played)
	assert.Equal(t, "\a\a", out.String())
}

func TestNotifier_SwallowsPlayerErrors(t *testing.T) {
	sounder := &fakeSounder{err: errors.New("no audio device")}
	var out syncBuffer
	n := NewNotifier(config.AudioConfig{Enabled: true, Volume: 80, Sound: "/sounds/ding.wav"}, sounder, &out, nil)

	assert.NotPanics(t, func() {
		n.Play()
		n.Wait()
	})
	assert.Len(t, sounder.played, 1)
	assert.Equal(t, "\a", out.String(), "falls back to the bell")
}

func TestNotifier_Disabled(t *testing.T) {
	sounder := &fakeSounder{}
	var out syncBuffer
	n := NewNotifier(config.AudioConfig{Enabled: false, Sound: "/sounds/ding.wav"}, sounder, &out, nil)

	n.Play()
	n.Wait()

	assert.Empty(t, sounder.played)
	assert.Empty(t, out.String())
}

func TestNotifier_NilOutputs(t *testing.T) {
	n := NewNotifier(config.AudioConfig{Enabled: true}, nil, nil, nil)
	assert.NotPanics(t, func() {
		n.Play()
		n.Wait()
	})
}

func TestNotifier_UpdateConfig(t *testing.T) {
	sounder := &fakeSounder{}
	var out syncBuffer
	n := NewNotifier(config.AudioConfig{Enabled: false}, sounder, &out, nil)

	n.UpdateConfig(config.AudioConfig{Enabled: true, Volume: 25, Sound: "/sounds/gong.ogg"})
	n.Play()
	n.Wait()

	assert.Equal(t, []string{"/sounds/gong.ogg"}, sounder.preloaded)
	assert.Equal(t, []string{"/sounds/gong.ogg"}, sounder.played)
	assert.InDelta(t, 0.25, sounder.volume, 1e-9)
}

func TestNotifier_InvalidatesChangedSound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ding.wav")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	sounder := &fakeSounder{}
	n := NewNotifier(config.AudioConfig{Enabled: true, Sound: path}, sounder, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, n.Start(ctx))
	defer n.Stop()

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	assert.Eventually(t, func() bool {
		return len(sounder.invalidatedPaths()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, path, sounder.invalidatedPaths()[0])
}

func TestNotifier_WatchFollowsConfiguredSound(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "ding.wav")
	second := filepath.Join(dir, "gong.wav")
	require.NoError(t, os.WriteFile(first, []byte("v1"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("v1"), 0644))

	sounder := &fakeSounder{}
	n := NewNotifier(config.AudioConfig{Enabled: true, Sound: first}, sounder, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, n.Start(ctx))
	defer n.Stop()

	n.UpdateConfig(config.AudioConfig{Enabled: true, Sound: second})

	require.NoError(t, os.WriteFile(first, []byte("v2"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("v2"), 0644))

	assert.Eventually(t, func() bool {
		return len(sounder.invalidatedPaths()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	// Only the configured sound is invalidated.
	time.Sleep(50 * time.Millisecond)
	for _, p := range sounder.invalidatedPaths() {
		assert.Equal(t, second, p)
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w := NewWatcher(&fakeSounder{}, nil)
	require.NoError(t, w.SetPath("/sounds/ding.wav"))
	w.Stop()
}
