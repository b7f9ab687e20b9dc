// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"
	"time"
)

// SlotState is the lifecycle state of a staging slot.
type SlotState uint8

const (
	// SlotIdle means the slot holds no submission and may be written.
	SlotIdle SlotState = iota
	// SlotWritable means a frame is being recorded into the slot.
	SlotWritable
	// SlotPending means the GPU may still read the slot.
	SlotPending
)

// String returns the state name.
func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "Idle"
	case SlotWritable:
		return "Writable"
	case SlotPending:
		return "Pending"
	default:
		return fmt.Sprintf("SlotState(%d)", uint8(s))
	}
}

// Poller reports the highest completed submission index. hal.Queue
// implements it.
type Poller interface {
	PollCompleted() uint64
}

type slot struct {
	state   SlotState
	token   uint64
	release []func()
}

func (s *slot) runRelease() {
	for _, fn := range s.release {
		fn()
	}
	s.release = s.release[:0]
}

// Ring rotates frames through a fixed number of staging slots. A slot is
// only written after the GPU has finished the submission that last read it.
//
// Ring is not safe for concurrent use.
type Ring struct {
	slots    []slot
	current  int
	poller   Poller
	timeout  time.Duration
	interval time.Duration
}

// NewRing creates a ring of n slots.
func NewRing(n int, p Poller, timeout, interval time.Duration) *Ring {
	if n < 1 {
		n = 1
	}
	if interval <= 0 {
		interval = 100 * time.Microsecond
	}
	return &Ring{
		slots:    make([]slot, n),
		poller:   p,
		timeout:  timeout,
		interval: interval,
	}
}

// Len returns the number of slots.
func (r *Ring) Len() int { return len(r.slots) }

// Current returns the index of the slot the next frame uses.
func (r *Ring) Current() int { return r.current }

// State returns the state of slot i.
func (r *Ring) State(i int) SlotState { return r.slots[i].state }

// Token returns the submission index slot i waits on.
func (r *Ring) Token(i int) uint64 { return r.slots[i].token }

// Acquire waits until the current slot is free and marks it writable.
// Every other slot whose submission has already completed is returned to
// idle first, so its deferred releases do not wait for the slot's turn.
func (r *Ring) Acquire(ctx context.Context) (int, error) {
	r.reclaim()
	s := &r.slots[r.current]
	switch s.state {
	case SlotWritable:
		return -1, ErrSlotBusy
	case SlotPending:
		if err := r.wait(ctx, s.token); err != nil {
			return -1, err
		}
		s.runRelease()
	}
	s.state = SlotWritable
	s.token = 0
	return r.current, nil
}

// Defer registers fn to run once the current slot's submission completes.
func (r *Ring) Defer(fn func()) {
	s := &r.slots[r.current]
	s.release = append(s.release, fn)
}

// DeferLatest registers fn to run once the most recent submission
// completes. With nothing in flight fn runs immediately.
func (r *Ring) DeferLatest(fn func()) {
	r.reclaim()
	n := len(r.slots)
	s := &r.slots[(r.current+n-1)%n]
	if s.state != SlotPending {
		fn()
		return
	}
	s.release = append(s.release, fn)
}

// Commit marks the writable slot as submitted with the given token and
// advances to the next slot.
func (r *Ring) Commit(token uint64) error {
	s := &r.slots[r.current]
	if s.state != SlotWritable {
		return fmt.Errorf("render: commit slot %d in state %v", r.current, s.state)
	}
	s.state = SlotPending
	s.token = token
	r.current = (r.current + 1) % len(r.slots)
	return nil
}

// Abort returns a writable slot to idle without advancing. Nothing was
// submitted, so deferred releases run immediately.
func (r *Ring) Abort() {
	s := &r.slots[r.current]
	if s.state != SlotWritable {
		return
	}
	s.runRelease()
	s.state = SlotIdle
}

// Drain waits for every pending slot and returns them to idle.
func (r *Ring) Drain(ctx context.Context) error {
	for i := range r.slots {
		s := &r.slots[i]
		if s.state != SlotPending {
			continue
		}
		if err := r.wait(ctx, s.token); err != nil {
			return err
		}
		s.runRelease()
		s.state = SlotIdle
		s.token = 0
	}
	return nil
}

// reclaim returns completed pending slots to idle.
func (r *Ring) reclaim() {
	done := r.poller.PollCompleted()
	for i := range r.slots {
		s := &r.slots[i]
		if s.state != SlotPending || s.token > done {
			continue
		}
		s.runRelease()
		s.state = SlotIdle
		s.token = 0
	}
}

// releaseAll runs every deferred release regardless of slot state. It is
// only safe once the device is idle.
func (r *Ring) releaseAll() {
	for i := range r.slots {
		r.slots[i].runRelease()
	}
}

func (r *Ring) wait(ctx context.Context, token uint64) error {
	return waitCompleted(ctx, r.poller, token, r.timeout, r.interval)
}

// waitCompleted polls p until submission token has completed.
func waitCompleted(ctx context.Context, p Poller, token uint64, timeout, interval time.Duration) error {
	if p.PollCompleted() >= token {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: submission %d", ErrFenceTimeout, token)
		case <-tick.C:
			if p.PollCompleted() >= token {
				return nil
			}
		}
	}
}
