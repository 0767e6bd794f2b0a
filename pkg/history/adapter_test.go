package history

import (
	"testing"

	"github.com/zdunecki/qrwizard/pkg/wizard"
)

const base = "/create"

func mounted(t *testing.T) (*wizard.Store, *Memory, *Adapter) {
	t.Helper()
	store := wizard.NewStore(wizard.Options{})
	mem := NewMemory("/landing")
	a := NewAdapter(mem, store, base, nil)
	a.Mount()
	t.Cleanup(a.Unmount)
	return store, mem, a
}

func TestMountReplacesCurrentEntry(t *testing.T) {
	_, mem, _ := mounted(t)
	if mem.Len() != 1 {
		t.Fatalf("mount pushed: len = %d", mem.Len())
	}
	if mem.Path() != base || mem.Current().Step != wizard.StepType {
		t.Fatalf("entry = %q %+v", mem.Path(), mem.Current())
	}
}

func TestStepChangesArePushed(t *testing.T) {
	store, mem, _ := mounted(t)
	store.GoToNextStep()
	store.GoToNextStep()

	if mem.Len() != 3 || mem.Path() != base+"/design" {
		t.Fatalf("len = %d path = %q", mem.Len(), mem.Path())
	}
	if mem.Current().Step != wizard.StepDesign {
		t.Fatalf("entry = %+v", mem.Current())
	}

	store.SetQRType("url")
	store.SetCurrentStep(wizard.StepDesign)
	if mem.Len() != 3 {
		t.Fatalf("no-op transitions pushed entries: len = %d", mem.Len())
	}
}

func TestBackCommitsAllowedStep(t *testing.T) {
	store, mem, _ := mounted(t)
	store.GoToNextStep()
	store.GoToNextStep()

	mem.Back()
	if store.State().CurrentStep != wizard.StepContent {
		t.Fatalf("current = %s", store.State().CurrentStep)
	}
	if mem.Len() != 3 {
		t.Fatalf("committing a popped step pushed: len = %d", mem.Len())
	}

	mem.Forward()
	if store.State().CurrentStep != wizard.StepDesign {
		t.Fatalf("current = %s", store.State().CurrentStep)
	}
}

func TestBlockedNavigationIsVetoed(t *testing.T) {
	store, mem, _ := mounted(t)
	store.GoToNextStep()
	mem.Back()
	if store.State().CurrentStep != wizard.StepType {
		t.Fatal("back did not apply")
	}

	store.ResetWizard()
	mem.Forward()

	if store.State().CurrentStep != wizard.StepType {
		t.Fatalf("guard bypassed: current = %s", store.State().CurrentStep)
	}
	if mem.Path() != base || mem.Current().Step != wizard.StepType {
		t.Fatalf("current step not re-asserted: %q %+v", mem.Path(), mem.Current())
	}
	if mem.Forward() {
		t.Fatal("vetoed entry is still reachable")
	}
}

func TestPopStateWithoutStepFallsBackToFirst(t *testing.T) {
	store, _, a := mounted(t)
	store.GoToNextStep()
	store.GoToNextStep()

	a.PopState(nil)
	if store.State().CurrentStep != wizard.StepType {
		t.Fatalf("current = %s", store.State().CurrentStep)
	}
}

func TestUnmountStopsSync(t *testing.T) {
	store, mem, a := mounted(t)
	a.Unmount()
	store.GoToNextStep()
	if mem.Len() != 1 {
		t.Fatal("unmounted adapter still pushes")
	}
	mem.Push("/elsewhere", &Entry{Step: wizard.StepType})
	mem.Back()
	if store.State().CurrentStep != wizard.StepContent {
		t.Fatal("unmounted adapter still handles popstate")
	}
}
