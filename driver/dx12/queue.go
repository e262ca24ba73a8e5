// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"time"

	"github.com/gogpu/wgpu/hal"

	"gviegas/neo3/driver"
)

// queue implements driver.Queue over the gpu's single hal.Queue (see
// the gpu type's doc comment for why this backend cannot hand out
// independently-scheduled native queues).
type queue struct {
	gpu       *gpu
	kind      driver.QueueKind
	priority  driver.QueuePriority
	fence     hal.Fence
	lastValue uint64
	debug     []string
}

// Kind implements driver.Queue.
func (q *queue) Kind() driver.QueueKind { return q.kind }

// Priority implements driver.Queue.
func (q *queue) Priority() driver.QueuePriority { return q.priority }

// CreateCmdBuffer implements driver.Queue.
func (q *queue) CreateCmdBuffer(secondary, beginRecording bool) (driver.CmdBuffer, error) {
	enc, err := q.gpu.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{})
	if err != nil {
		return nil, driver.ErrFatal
	}
	cb := &cmdBuffer{gpu: q.gpu, queue: q, enc: enc, secondary: secondary}
	if beginRecording {
		if err := cb.Begin(); err != nil {
			return nil, err
		}
	}
	return cb, nil
}

// Submit implements driver.Queue. cbs may mix a leading/trailing
// primary with secondaries queued onto it via ExecuteSecondary
// (spliced into the native list right after their enclosing primary,
// mimicking vkCmdExecuteCommands' inline execution) or with
// secondaries recorded for a RenderPass's subpasses; only cbs[0] being
// secondary is rejected, since a secondary can never lead a
// submission.
func (q *queue) Submit(cbs []driver.CmdBuffer) (uint64, error) {
	native := make([]hal.CommandBuffer, 0, len(cbs))
	for i, c := range cbs {
		cb, ok := c.(*cmdBuffer)
		if !ok {
			return 0, driver.ErrInvalidArgument
		}
		if i == 0 && cb.secondary {
			return 0, driver.ErrMustBePrimary
		}
		if cb.state == cbRecording {
			if err := cb.End(); err != nil {
				return 0, err
			}
		}
		if cb.state != cbExecutable {
			return 0, driver.ErrInvalidArgument
		}
		native = append(native, cb.native)
		for _, p := range cb.pending {
			if p.state == cbExecutable {
				native = append(native, p.native)
			}
		}
		cb.state = cbSubmitted
	}
	q.lastValue++
	if err := q.gpu.queue.Submit(native, q.fence, q.lastValue); err != nil {
		return 0, runtimef("submit", err)
	}
	for _, c := range cbs {
		cb := c.(*cmdBuffer)
		cb.releaseRetained()
		for _, p := range cb.pending {
			p.releaseRetained()
		}
		cb.pending = nil
	}
	return q.lastValue, nil
}

// WaitFor implements driver.Queue.
func (q *queue) WaitFor(value uint64) error {
	ok, err := q.gpu.dev.Wait(q.fence, value, 10*time.Second)
	if err != nil {
		return driver.ErrFatal
	}
	if !ok {
		return driver.ErrFatal
	}
	return nil
}

// WaitForQueue implements driver.Queue. hal has no cross-queue
// semaphore primitive exposed at this layer; since every queue on
// this backend already serializes through the same native hal.Queue,
// ordering is already guaranteed by submission order and this is a
// no-op rather than a real dependency insertion.
func (q *queue) WaitForQueue(other driver.Queue, value uint64) error {
	return nil
}

// BeginDebugRegion implements driver.Queue.
func (q *queue) BeginDebugRegion(name string) {
	q.debug = append(q.debug, name)
}

// EndDebugRegion implements driver.Queue.
func (q *queue) EndDebugRegion() {
	if len(q.debug) > 0 {
		q.debug = q.debug[:len(q.debug)-1]
	}
}
