package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/rangoli/internal/detect"
	"github.com/ayusman/rangoli/internal/loop"
	"github.com/ayusman/rangoli/internal/source"
	"github.com/ayusman/rangoli/internal/store"
	"github.com/ayusman/rangoli/testdata"
)

// mockFactory builds MockAdapters and records the configurations it was
// asked for.
type mockFactory struct {
	configs  []detect.Config
	adapters []*detect.MockAdapter
	err      error
}

func (f *mockFactory) build(cfg detect.Config) (detect.Adapter, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.configs = append(f.configs, cfg)
	m := detect.NewMockAdapter(cfg.Variant)
	f.adapters = append(f.adapters, m)
	return m, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, s *store.Store) (*App, *mockFactory, *source.MockSource) {
	t.Helper()

	frames := testdata.FrameSequence(64, 48, 2)
	t.Cleanup(func() { testdata.CloseFrames(frames) })
	src := source.NewMock(frames, true)

	factory := &mockFactory{}
	a := New(Config{
		Store:          s,
		Interval:       5 * time.Millisecond,
		AdapterFactory: factory.build,
		Source:         src,
	})
	t.Cleanup(a.Stop)
	return a, factory, src
}

func waitForState(t *testing.T, l *loop.Loop, want loop.State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s, _ := l.State(); s == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	s, err := l.State()
	t.Fatalf("timed out waiting for state %s, still %s (%v)", want, s, err)
}

func TestAppStartAndStop(t *testing.T) {
	a, factory, src := newTestApp(t, newTestStore(t))

	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !src.IsOpen() {
		t.Error("expected source to be open after start")
	}
	if a.ActiveVariant() != detect.VariantHand {
		t.Errorf("expected default hand variant, got %s", a.ActiveVariant())
	}
	if len(factory.configs) != 1 || factory.configs[0].Variant != detect.VariantHand {
		t.Fatalf("expected one hand adapter built, got %+v", factory.configs)
	}

	waitForState(t, a.Loop(), loop.StateReady)

	a.Stop()
	if src.IsOpen() {
		t.Error("expected source released after stop")
	}
	if factory.adapters[0].CloseCalls != 1 {
		t.Errorf("expected adapter closed on stop, got %d", factory.adapters[0].CloseCalls)
	}

	t.Run("start is idempotent while started", func(t *testing.T) {
		b, _, _ := newTestApp(t, newTestStore(t))
		if err := b.Start(); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if err := b.Start(); err != nil {
			t.Errorf("second start should be a no-op, got %v", err)
		}
	})
}

func TestAppStartFailsWhenSourceDenied(t *testing.T) {
	frames := testdata.FrameSequence(64, 48, 1)
	defer testdata.CloseFrames(frames)
	src := source.NewMock(frames, true)
	src.SetOpenError(source.ErrPermissionDenied)

	factory := &mockFactory{}
	a := New(Config{
		Interval:       5 * time.Millisecond,
		AdapterFactory: factory.build,
		Source:         src,
	})
	defer a.Stop()

	if err := a.Start(); !errors.Is(err, source.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if len(factory.configs) != 0 {
		t.Error("expected no adapter built when the source is denied")
	}
	if s, _ := a.Loop().State(); s != loop.StateIdle {
		t.Errorf("expected idle loop after denied start, got %s", s)
	}

	// Granting access and starting again recovers.
	src.SetOpenError(nil)
	if err := a.Start(); err != nil {
		t.Fatalf("retry start failed: %v", err)
	}
	waitForState(t, a.Loop(), loop.StateReady)
}

func TestAppSwitchVariant(t *testing.T) {
	s := newTestStore(t)
	a, factory, _ := newTestApp(t, s)

	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitForState(t, a.Loop(), loop.StateReady)

	if err := a.SwitchVariant(detect.VariantPose); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if a.ActiveVariant() != detect.VariantPose {
		t.Errorf("expected pose variant, got %s", a.ActiveVariant())
	}
	if factory.adapters[0].CloseCalls != 1 {
		t.Errorf("expected old adapter discarded before the new load, got %d closes", factory.adapters[0].CloseCalls)
	}

	// The choice survives a restart.
	if v := s.Settings().GetDefault(store.SettingActiveVariant, ""); v != "pose" {
		t.Errorf("expected persisted variant pose, got %q", v)
	}

	b, bFactory, _ := newTestApp(t, s)
	if err := b.Start(); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if b.ActiveVariant() != detect.VariantPose {
		t.Errorf("expected restored pose variant, got %s", b.ActiveVariant())
	}
	if len(bFactory.configs) != 1 || bFactory.configs[0].Variant != detect.VariantPose {
		t.Errorf("expected pose adapter on restore, got %+v", bFactory.configs)
	}
}

func TestAppSwitchVariantUsesStoredProfile(t *testing.T) {
	s := newTestStore(t)
	if err := s.Profiles().Save(&store.Profile{
		Variant:       detect.VariantPose,
		MaxSubjects:   2,
		MinConfidence: 0.6,
	}); err != nil {
		t.Fatalf("profile save failed: %v", err)
	}

	a, factory, _ := newTestApp(t, s)
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := a.SwitchVariant(detect.VariantPose); err != nil {
		t.Fatalf("switch failed: %v", err)
	}

	cfg := factory.configs[len(factory.configs)-1]
	if cfg.MaxSubjects != 2 || cfg.MinConfidence != 0.6 {
		t.Errorf("expected stored profile applied, got %+v", cfg)
	}
}

func TestAppSwitchVariantFactoryFailure(t *testing.T) {
	a, factory, _ := newTestApp(t, newTestStore(t))
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitForState(t, a.Loop(), loop.StateReady)

	factory.err = errors.New("sidecar missing")
	if err := a.SwitchVariant(detect.VariantFace); err == nil {
		t.Fatal("expected switch to fail")
	}

	// The running adapter stays active when the new one cannot be built.
	if a.ActiveVariant() != detect.VariantHand {
		t.Errorf("expected hand variant retained, got %s", a.ActiveVariant())
	}
	if factory.adapters[0].CloseCalls != 0 {
		t.Error("expected active adapter untouched after failed build")
	}
}

func TestAppSetFileSourceReleasesCurrentFirst(t *testing.T) {
	s := newTestStore(t)
	a, _, src := newTestApp(t, s)
	if err := a.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// The file does not exist: the old source must already be released
	// and the pipeline left idling on the closed replacement.
	err := a.SetFileSource("/nonexistent/clip.mp4")
	if !errors.Is(err, source.ErrBadMedia) {
		t.Fatalf("expected ErrBadMedia, got %v", err)
	}
	if src.IsOpen() {
		t.Error("expected previous source released before opening the file")
	}
	if a.Source().IsOpen() {
		t.Error("expected pipeline to idle on a closed source after a failed open")
	}

	// The failed path is not recorded.
	media, listErr := s.RecentMedia().List()
	if listErr != nil {
		t.Fatalf("list failed: %v", listErr)
	}
	if len(media) != 0 {
		t.Errorf("expected no recent media after failed open, got %d", len(media))
	}
}
