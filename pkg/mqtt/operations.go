package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vetraconnect/vetra/pkg/event"
	"github.com/vetraconnect/vetra/pkg/idx"
)

// DefaultOperationTimeout bounds how long a caller waits for an operation
// to complete when it has no better deadline. Commands can take minutes
// when the vehicle has to be woken over the mobile network first.
const DefaultOperationTimeout = 5 * time.Minute

// ErrOperationTimeout reports that a wait's deadline elapsed before a
// completion event arrived.
var ErrOperationTimeout = errors.New("mqtt: timed out waiting for operation")

// OperationError reports that the broker announced a failed operation.
type OperationError struct {
	Operation event.OperationName
	TraceID   string
	Code      string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %s with trace %s failed: %s", e.Operation, e.TraceID, e.Code)
}

type waitResult struct {
	ev  *event.OperationEvent
	err error
}

// OperationWait is a pending expectation that one operation of a given name
// will complete. It is resolved by the event stream, timed out by its
// context, or cancelled by the caller.
type OperationWait struct {
	id        idx.ID
	operation event.OperationName
	owner     *operations
	done      chan waitResult
}

// ID identifies this wait in logs.
func (w *OperationWait) ID() idx.ID { return w.id }

// Wait blocks until the operation completes or ctx expires. A deadline
// expiry yields ErrOperationTimeout and deregisters the wait, so a late
// event cannot resolve a caller that already gave up.
func (w *OperationWait) Wait(ctx context.Context) (*event.OperationEvent, error) {
	select {
	case res := <-w.done:
		return res.ev, res.err
	case <-ctx.Done():
		if !w.owner.remove(w.id) {
			// Resolved just as the deadline fired; the result is already
			// buffered.
			res := <-w.done
			return res.ev, res.err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrOperationTimeout
		}
		return nil, ctx.Err()
	}
}

// Cancel removes the wait from the pending set without resolving it. A
// command dispatcher calls it when the triggering request already failed,
// so the operation will never run.
func (w *OperationWait) Cancel() {
	w.owner.remove(w.id)
}

// operations is the pending-wait registry. A completion event resolves the
// oldest wait registered for its operation name, one wait per event; the
// protocol offers no stronger correlation key than the name, so this
// ordering is the best correlation available.
type operations struct {
	log *slog.Logger

	mu    sync.Mutex
	waits []*OperationWait
}

func newOperations(log *slog.Logger) *operations {
	return &operations{log: log}
}

func (o *operations) register(name event.OperationName) *OperationWait {
	w := &OperationWait{
		id:        idx.New(),
		operation: name,
		owner:     o,
		done:      make(chan waitResult, 1),
	}

	o.mu.Lock()
	o.waits = append(o.waits, w)
	o.mu.Unlock()

	o.log.Debug("waiting for operation", "operation", name, "wait_id", w.id)
	return w
}

// remove takes a wait out of the pending set. It reports false if the wait
// was already resolved or removed.
func (o *operations) remove(id idx.ID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, w := range o.waits {
		if w.id == id {
			o.waits = append(o.waits[:i], o.waits[i+1:]...)
			return true
		}
	}
	return false
}

func (o *operations) pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.waits)
}

// handle feeds one operation event through the registry. IN_PROGRESS keeps
// every wait pending; terminal statuses resolve or fail exactly one.
func (o *operations) handle(ev *event.OperationEvent) {
	if !ev.Status.Terminal() {
		o.log.Debug("operation in progress", "operation", ev.Operation, "trace_id", ev.TraceID)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for i, w := range o.waits {
		if w.operation != ev.Operation {
			continue
		}
		o.waits = append(o.waits[:i], o.waits[i+1:]...)

		res := waitResult{ev: ev}
		switch ev.Status {
		case event.OperationError:
			o.log.Error("operation failed", "operation", ev.Operation, "trace_id", ev.TraceID, "error_code", ev.ErrorCode)
			res = waitResult{err: &OperationError{Operation: ev.Operation, TraceID: ev.TraceID, Code: ev.ErrorCode}}
		case event.OperationCompletedWarning:
			o.log.Warn("operation completed with warnings", "operation", ev.Operation, "trace_id", ev.TraceID)
		}

		// The channel is buffered and the wait is out of the set, so this
		// send cannot block and cannot happen twice.
		w.done <- res
		return
	}

	o.log.Debug("operation completed with no pending wait", "operation", ev.Operation, "trace_id", ev.TraceID)
}
