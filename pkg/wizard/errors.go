package wizard

import "errors"

var (
	// ErrUnknownStep is returned when a step name is not part of the wizard.
	ErrUnknownStep = errors.New("unknown wizard step")

	// ErrStepBlocked is returned by GoToStep when the navigation guard rejects
	// the target step.
	ErrStepBlocked = errors.New("wizard step not reachable yet")
)
