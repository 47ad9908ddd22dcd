package telemetry

import (
	"time"

	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/scene"
)

const (
	FrameSnapshot = "snapshot"
	FrameNudge    = "nudge"
)

// Frame is one JSON message on the /ws stream.
type Frame struct {
	Type     string         `json:"type"`
	At       time.Time      `json:"at"`
	Entities []scene.State  `json:"entities,omitempty"`
	Nudge    *perturb.Nudge `json:"nudge,omitempty"`
}

func snapshotFrame(states []scene.State) Frame {
	return Frame{Type: FrameSnapshot, At: time.Now(), Entities: states}
}

func nudgeFrame(n perturb.Nudge) Frame {
	return Frame{Type: FrameNudge, At: n.At, Nudge: &n}
}
