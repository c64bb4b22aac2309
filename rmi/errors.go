package rmi

import "errors"

// Sentinel errors for the Trainer's failure taxonomy. Each is surfaced via
// fmt.Errorf("%w: ...", ErrX) so callers can still errors.Is against it.
var (
	// ErrEmptyData is returned when the training data has zero entries.
	ErrEmptyData = errors.New("rmi: empty training data")

	// ErrNonMonotonicInput is returned when the scan Train runs before
	// training finds keys or positions out of order.
	ErrNonMonotonicInput = errors.New("rmi: input is not sorted/monotonic")

	// ErrIncompatibleLayering is returned when the requested top/leaf kinds
	// violate each other's MustBeTop/MustBeBottom restriction.
	ErrIncompatibleLayering = errors.New("rmi: incompatible top/leaf model layering")

	// ErrNumericOverflow is returned when the branching factor is below 2.
	// Predicted leaf indices are clamped into [0, B) rather than reported
	// through this error.
	ErrNumericOverflow = errors.New("rmi: numeric overflow during training")

	// ErrFitDiverged is returned when a model's Fit reports an error (e.g.
	// a robust-linear fit whose trimmed keys are all equal). A diverged top
	// model always fails training; a diverged leaf is replaced with a
	// constant model when its kind supports one, and fails training
	// otherwise. A singular cubic-spline moment system is not reported here:
	// the spline falls back to zero curvature.
	ErrFitDiverged = errors.New("rmi: model fit diverged")
)
