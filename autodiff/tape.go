package autodiff

import (
	"github.com/pde-ml/pdenet/autodiff/ops"
	"github.com/pde-ml/pdenet/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients by walking them in reverse (reverse-mode differentiation).
//
// The tape doubles as the ambient differentiation context: recording
// enabled means gradients are being tracked. Training closures read
// IsRecording to decide whether stale gradients need clearing; testing
// paths require it enabled because the PDE-residual evaluators cannot
// form input derivatives without a recorded graph.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64),
		recording:  false,
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape if recording is enabled.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear resets the tape, removing all recorded operations.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Produced reports whether the tape recorded the operation that created
// x, i.e. whether x is attached to the computation graph.
func (t *GradientTape) Produced(x *tensor.RawTensor) bool {
	for _, op := range t.operations {
		if op.Output() == x {
			return true
		}
	}
	return false
}

// BackwardFrom computes gradients of root with respect to every tensor
// it depends on, seeding root with seed and walking the tape in reverse.
//
// With createGraph true the tape keeps recording while the backward
// computations run, so the returned gradients are themselves attached
// to the graph and can be differentiated again. This is how second and
// higher derivatives of a network with respect to its inputs are built.
// With createGraph false, recording is suspended for the walk (the
// final parameter-gradient pass needs no graph of its own).
//
// Returns a map from RawTensor identity to its accumulated gradient.
func (t *GradientTape) BackwardFrom(
	root, seed *tensor.RawTensor,
	backend tensor.Backend,
	createGraph bool,
) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads
	}

	if !createGraph {
		wasRecording := t.recording
		t.recording = false
		defer func() { t.recording = wasRecording }()
	}

	grads[root] = seed

	// Fix the walk extent: with createGraph enabled the slice grows
	// while we iterate, and the freshly recorded backward operations
	// must not be revisited in this pass.
	limit := len(t.operations)
	for i := limit - 1; i >= 0; i-- {
		op := t.operations[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(outputGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, exists := grads[input]; exists {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}
	return grads
}
