// ABOUTME: Fixed pool of cyclically reused playback buffers
// ABOUTME: Tracks Free/Submitted state per buffer, the engine's core sync object
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/keepaudio/keepaudio-go/internal/device"
)

// ErrAllocationFailed reports that the buffer pool could not be allocated.
var ErrAllocationFailed = errors.New("allocation failed")

type bufferStatus int

const (
	statusFree bufferStatus = iota
	statusSubmitted
)

// Ring owns a fixed number of fixed-size playback buffers for the lifetime
// of one engine run. Buffers move Free→Submitted only through Prime or
// RefillAndResubmit, and Submitted→Free only through a completion reported
// by the device. At every point count(Free)+count(Submitted) equals the
// buffer count.
//
// Ring is not safe for concurrent use; exactly one goroutine polls and
// refills. The device driver is the only other actor and it communicates
// through completion tokens, never shared state.
type Ring struct {
	dev    device.Device
	bufs   [][]byte
	status []bufferStatus
}

// NewRing allocates count buffers of bytesPerBuffer each.
func NewRing(dev device.Device, count, bytesPerBuffer int) (*Ring, error) {
	if count <= 0 || bytesPerBuffer <= 0 {
		return nil, fmt.Errorf("%w: %d buffers of %d bytes", ErrAllocationFailed, count, bytesPerBuffer)
	}

	r := &Ring{
		dev:    dev,
		bufs:   make([][]byte, count),
		status: make([]bufferStatus, count),
	}
	for i := range r.bufs {
		r.bufs[i] = make([]byte, bytesPerBuffer)
	}
	return r, nil
}

// Len returns the fixed buffer count.
func (r *Ring) Len() int {
	return len(r.bufs)
}

// Counts returns how many buffers are Free and Submitted.
func (r *Ring) Counts() (free, submitted int) {
	for _, st := range r.status {
		if st == statusFree {
			free++
		} else {
			submitted++
		}
	}
	return free, submitted
}

// Prime fills every buffer and submits it, leaving the device queue at
// capacity. fill must write the full buffer.
func (r *Ring) Prime(fill func([]byte)) error {
	for i := range r.bufs {
		fill(r.bufs[i])
		if err := r.dev.Submit(i, r.bufs[i]); err != nil {
			return fmt.Errorf("priming buffer %d: %w", i, err)
		}
		r.status[i] = statusSubmitted
	}
	return nil
}

// PollCompleted asks the device for finished buffers and marks them Free.
func (r *Ring) PollCompleted() ([]int, error) {
	tokens, err := r.dev.PollCompleted()
	if err != nil {
		return nil, err
	}
	for _, i := range tokens {
		if i < 0 || i >= len(r.status) {
			return nil, fmt.Errorf("device reported unknown buffer token %d", i)
		}
		if r.status[i] != statusSubmitted {
			return nil, fmt.Errorf("device completed buffer %d which was not submitted", i)
		}
		r.status[i] = statusFree
	}
	return tokens, nil
}

// RefillAndResubmit refills buffer i and hands it back to the device.
//
// Calling it on a buffer that is not Free is a contract violation in the
// polling loop and panics: submitting the same buffer twice would corrupt
// the device queue, and silently skipping would break phase continuity.
func (r *Ring) RefillAndResubmit(i int, fill func([]byte)) error {
	if r.status[i] != statusFree {
		panic(fmt.Sprintf("refill of buffer %d which is not free", i))
	}
	fill(r.bufs[i])
	if err := r.dev.Submit(i, r.bufs[i]); err != nil {
		return fmt.Errorf("resubmitting buffer %d: %w", i, err)
	}
	r.status[i] = statusSubmitted
	return nil
}

// Drain polls until every buffer is Free or the timeout elapses, and
// reports whether the drain completed. Used only at shutdown; a timeout
// is logged by the caller and resources are released anyway, since the
// buffers are process-owned memory.
func (r *Ring) Drain(timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := r.PollCompleted(); err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Poll failed during drain")
			return false
		}
		free, _ := r.Counts()
		if free == len(r.bufs) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}

// Release drops the buffer pool. Idempotent.
func (r *Ring) Release() {
	r.bufs = nil
	r.status = nil
}
