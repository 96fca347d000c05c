// Package prerender keeps the four transition buffers hot so the slideshow
// controller never has to blend frames at navigation time.
//
// At most one worker goroutine runs at a time. Starting a run cancels any
// previous worker and waits for it to fully exit before spawning the
// replacement, so a buffer can never mix frames from two runs. Completed
// buffers are handed over whole under a mutex; a cancelled run publishes
// nothing further.
package prerender

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/internal/frame"
	"github.com/frank26080115/fotokiosk/internal/library"
)

// Snapshot is the controller-owned state captured at start time. The worker
// only ever reads this copy; live history stays with the controller.
type Snapshot struct {
	Current  *frame.Pair
	History  *library.History
	EditMode bool
}

type PreRenderer struct {
	loader      *frame.Loader
	selector    *library.Selector
	steps       int
	loadRetries int

	mu        sync.Mutex
	toNew     *frame.Transition
	toNext    *frame.Transition
	toPrev    *frame.Transition
	wake      *frame.Transition
	nextIsNew bool
	allReady  bool

	cancel context.CancelFunc
	done   chan struct{}
}

func New(loader *frame.Loader, selector *library.Selector, steps int) *PreRenderer {
	return &PreRenderer{
		loader:      loader,
		selector:    selector,
		steps:       steps,
		loadRetries: 10,
	}
}

// Start launches a fresh pre-render run over the given snapshot. Any running
// worker is cancelled and awaited first, then all buffers are invalidated.
func (p *PreRenderer) Start(snap Snapshot) {
	p.Halt()

	p.mu.Lock()
	p.toNew, p.toNext, p.toPrev, p.wake = nil, nil, nil, nil
	p.nextIsNew = false
	p.allReady = false
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	logrus.Debugf("pre-renderer worker starting")
	go p.run(ctx, snap, p.done)
}

// Halt cancels any running worker and blocks until it has exited. Safe to
// call when no worker is running.
func (p *PreRenderer) Halt() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	logrus.Debugf("waiting for pre-renderer worker to end")
	<-p.done
	p.cancel = nil
	p.done = nil
}

func (p *PreRenderer) NewReady() bool  { return p.ready(&p.toNew) }
func (p *PreRenderer) NextReady() bool { return p.ready(&p.toNext) }
func (p *PreRenderer) PrevReady() bool { return p.ready(&p.toPrev) }
func (p *PreRenderer) WakeReady() bool { return p.ready(&p.wake) }

func (p *PreRenderer) ready(t **frame.Transition) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *t != nil
}

// AllReady reports that a run has completed every buffer it could build.
func (p *PreRenderer) AllReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allReady
}

// TakeNew consumes the to-new transition. Consuming a navigation buffer
// invalidates all of them: the current image is about to change, so the
// remaining ramps blend from a stale source.
func (p *PreRenderer) TakeNew() *frame.Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.toNew
	if t != nil {
		p.invalidateLocked()
	}
	return t
}

// TakeNext consumes the to-next transition and reports whether it is the
// shared new pick (forward step at the history tail).
func (p *PreRenderer) TakeNext() (*frame.Transition, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.toNext
	isNew := p.nextIsNew
	if t != nil {
		p.invalidateLocked()
	}
	return t, isNew
}

// TakePrev consumes the to-previous transition.
func (p *PreRenderer) TakePrev() *frame.Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.toPrev
	if t != nil {
		p.invalidateLocked()
	}
	return t
}

// TakeWake returns the wake transition without invalidating anything: waking
// from black leaves the current image, and the other ramps, intact.
func (p *PreRenderer) TakeWake() *frame.Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wake
}

func (p *PreRenderer) invalidateLocked() {
	p.toNew, p.toNext, p.toPrev, p.wake = nil, nil, nil, nil
	p.nextIsNew = false
	p.allReady = false
}

func (p *PreRenderer) run(ctx context.Context, snap Snapshot, done chan struct{}) {
	defer close(done)

	current := snap.Current
	if current == nil {
		current = p.loader.Blank()
	}

	// Phase 1: resolve and load a new candidate, retrying with fresh picks.
	var newPair *frame.Pair
	var newPath string
	for attempt := 0; attempt < p.loadRetries; attempt++ {
		if ctx.Err() != nil {
			logrus.Debugf("pre-renderer got halt signal")
			return
		}
		path, err := p.selector.PickNew(snap.History, snap.EditMode)
		if err != nil {
			logrus.Warnf("pre-renderer: %v", err)
			return
		}
		logrus.Debugf("pre-renderer loading new file \"%s\"", path)
		pair, err := p.loader.Load(path)
		if err != nil {
			logrus.Warnf("pre-renderer failed loading new file \"%s\": %v", path, err)
			continue
		}
		newPair, newPath = pair, path
		break
	}
	if newPair == nil {
		logrus.Warnf("pre-renderer gave up finding a loadable new file")
		return
	}

	// Phase 2: to-new ramp.
	frames := frame.Blend(ctx, current, newPair, p.steps)
	if frames == nil {
		return
	}
	newTransition := &frame.Transition{Frames: frames, Dest: newPair, Path: newPath}
	if !p.publish(ctx, &p.toNew, newTransition) {
		return
	}

	// Phase 3: wake ramp from black, coarser steps for a snappier power-on.
	wakeFrames := frame.Blend(ctx, p.loader.Blank(), current, p.steps*2/3)
	if wakeFrames == nil {
		return
	}
	if !p.publish(ctx, &p.wake, &frame.Transition{Frames: wakeFrames, Dest: current}) {
		return
	}

	// Phases 4-5: to-next. At the tail, a forward step is the new pick by
	// definition; share the ramp instead of recomputing it.
	if snap.History.AtTail() {
		logrus.Debugf("pre-renderer re-using new file fade for next file fade")
		p.mu.Lock()
		if ctx.Err() == nil {
			p.toNext = newTransition.Clone()
			p.nextIsNew = true
		}
		p.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
	} else {
		nextPath, _ := snap.History.PeekNext()
		logrus.Debugf("pre-renderer loading next file \"%s\"", nextPath)
		if nextPair, err := p.loader.Load(nextPath); err != nil {
			logrus.Warnf("pre-renderer failed loading next file \"%s\": %v", nextPath, err)
		} else {
			nextFrames := frame.Blend(ctx, current, nextPair, p.steps)
			if nextFrames == nil {
				return
			}
			if !p.publish(ctx, &p.toNext, &frame.Transition{Frames: nextFrames, Dest: nextPair, Path: nextPath}) {
				return
			}
		}
	}

	// Phase 6: to-previous.
	if prevPath, ok := snap.History.PeekPrev(); ok {
		logrus.Debugf("pre-renderer loading prev file \"%s\"", prevPath)
		if prevPair, err := p.loader.Load(prevPath); err != nil {
			logrus.Warnf("pre-renderer failed loading prev file \"%s\": %v", prevPath, err)
		} else {
			prevFrames := frame.Blend(ctx, current, prevPair, p.steps)
			if prevFrames == nil {
				return
			}
			if !p.publish(ctx, &p.toPrev, &frame.Transition{Frames: prevFrames, Dest: prevPair, Path: prevPath}) {
				return
			}
		}
	}

	p.mu.Lock()
	if ctx.Err() == nil {
		p.allReady = true
	}
	p.mu.Unlock()
	logrus.Debugf("pre-renderer all done")
}

// publish stores a fully built transition, unless the run has been
// cancelled. The ctx check and the store happen under the same lock the
// readers take, so a consumer can never observe a buffer from a run whose
// cancellation it has already triggered.
func (p *PreRenderer) publish(ctx context.Context, slot **frame.Transition, t *frame.Transition) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		logrus.Debugf("pre-renderer got halt signal")
		return false
	}
	*slot = t
	return true
}
