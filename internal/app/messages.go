package app

import "time"

// TickMsg triggers a snapshot refresh and a history sample.
type TickMsg time.Time

// FrameMsg reports that the surface posted a new frame.
type FrameMsg struct{}
