package wizard

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/zdunecki/qrwizard/pkg/design"
)

func TestRestoreRoundTrip(t *testing.T) {
	storage := NewMemoryStorage()
	s, clk := newTestStore(t, storage)

	s.SetQRType("url")
	s.SetQRData(map[string]any{"url": "https://example.com"})
	s.GoToNextStep()
	s.GoToNextStep()
	s.UpdateDesignerConfig(&design.Config{ModuleShape: "dots"})
	s.SetMetadata(&Metadata{Name: "flyer", Tags: []string{"spring"}})
	want := s.State()

	restored, _ := newTestStore(t, storage)
	restored.now = clk.Now
	if !restored.Restore() {
		t.Fatal("Restore found nothing")
	}
	got := restored.State()

	if got.CurrentStep != StepDesign {
		t.Errorf("current step = %q", got.CurrentStep)
	}
	if !slices.Equal(got.CompletedSteps, want.CompletedSteps) {
		t.Errorf("completed = %v, want %v", got.CompletedSteps, want.CompletedSteps)
	}
	if got.QRData["url"] != "https://example.com" {
		t.Errorf("qr data = %v", got.QRData)
	}
	if got.DesignerConfig == nil || got.DesignerConfig.ModuleShape != "dots" {
		t.Errorf("designer config = %+v", got.DesignerConfig)
	}
	if got.Metadata == nil || got.Metadata.Name != "flyer" {
		t.Errorf("metadata = %+v", got.Metadata)
	}
	if got.SessionID != want.SessionID {
		t.Errorf("session id = %q, want %q", got.SessionID, want.SessionID)
	}
	if got.IsDirty {
		t.Error("dirty flag is transient and must not be restored")
	}
}

func TestEnvelopeCarriesVersion(t *testing.T) {
	storage := NewMemoryStorage()
	s, _ := newTestStore(t, storage)
	s.SetQRType("text")

	data, err := storage.Load(StorageKey)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(env["version"]) != "1" {
		t.Fatalf("version = %s", env["version"])
	}
	var st map[string]any
	if err := json.Unmarshal(env["state"], &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if _, ok := st["isDirty"]; ok {
		t.Fatal("isDirty leaked into the persisted whitelist")
	}
}

func TestRestoreToleratesBadEntries(t *testing.T) {
	cases := map[string]string{
		"not json":      "{",
		"wrong version": `{"state":{"currentStep":"design","sessionId":"x"},"version":99}`,
		"bad step":      `{"state":{"currentStep":"checkout","sessionId":"x"},"version":1}`,
		"no session":    `{"state":{"currentStep":"design"},"version":1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			storage := NewMemoryStorage()
			storage.Save(StorageKey, []byte(raw))
			s, _ := newTestStore(t, storage)
			if s.Restore() {
				t.Fatal("Restore accepted a bad entry")
			}
			if s.State().CurrentStep != StepType {
				t.Fatal("bad entry changed the state")
			}
		})
	}
}

func TestRestoreMissingEntry(t *testing.T) {
	s, _ := newTestStore(t, NewMemoryStorage())
	if s.Restore() {
		t.Fatal("Restore reported success with empty storage")
	}
}

func TestIsStale(t *testing.T) {
	s, clk := newTestStore(t, nil)
	s.SetQRType("url")

	clk.t = clk.t.Add(23 * time.Hour)
	if s.IsStale() {
		t.Fatal("stale after 23h")
	}
	clk.t = clk.t.Add(2 * time.Hour)
	if !s.IsStale() {
		t.Fatal("not stale after 25h")
	}
}

func TestClearPersistedStateRemovesEntry(t *testing.T) {
	storage := NewMemoryStorage()
	s, _ := newTestStore(t, storage)
	s.SetQRType("url")

	s.ClearPersistedState()
	if _, err := storage.Load(StorageKey); err != ErrNotFound {
		t.Fatalf("load after clear: err = %v, want ErrNotFound", err)
	}
	if s.State().QRType != "" {
		t.Fatal("state not reset")
	}
}

func TestFinishDownloadEndsSession(t *testing.T) {
	storage := NewMemoryStorage()
	s, _ := newTestStore(t, storage)
	for range 5 {
		s.GoToNextStep()
	}
	before := s.State().SessionID

	s.FinishDownload()
	st := s.State()
	if st.CurrentStep != StepType || st.SessionID == before {
		t.Fatalf("session not restarted: %+v", st)
	}
	if _, err := storage.Load(StorageKey); err != ErrNotFound {
		t.Fatalf("persisted entry survived: %v", err)
	}
}

func TestFileStorage(t *testing.T) {
	fs := NewFileStorage(t.TempDir())

	if _, err := fs.Load("k"); err != ErrNotFound {
		t.Fatalf("load missing: %v", err)
	}
	if err := fs.Save("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := fs.Load("k")
	if err != nil || string(data) != `{"a":1}` {
		t.Fatalf("load = %q, %v", data, err)
	}
	if err := fs.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := fs.Remove("k"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}
