package view

import (
	"context"
	"sync"
	"time"

	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/scene"
)

// frameLoop advances the scene with a fixed step on every tick.
type frameLoop struct {
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func startFrameLoop(ctx context.Context, ticker perturb.Ticker, interval time.Duration, sc *scene.Scene, logger log.Log) *frameLoop {
	f := &frameLoop{
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	dt := interval.Seconds()

	go func() {
		defer close(f.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-f.stopChan:
				return
			case <-ticker.C():
				if err := sc.Step(dt); err != nil {
					logger.Error("Scene step failed", log.Error(err))
				}
			}
		}
	}()
	return f
}

func (f *frameLoop) stop() {
	f.stopOnce.Do(func() { close(f.stopChan) })
	<-f.done
}
