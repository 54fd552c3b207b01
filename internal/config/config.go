package config

import "time"

const (
	// Level sensitivity
	MaxGravity    = 3.0 // Lateral gravity (m/s²) that pins the bubble to the ring
	MarginOfError = 4.0 // Pixel distance from center still counted as level

	// Geometry (dp, converted with the display density)
	BorderInsetDp     = 20.0 // Gap between the ring and the surface edge
	BorderWidthDp     = 8.0  // Ring stroke width
	IndicatorRadiusDp = 16.0 // Bubble radius

	// Terminal display
	DefaultDensity = 0.25 // px per dp on a half-block terminal raster
	TargetFPS      = 30   // Render loop pacing on the terminal surface

	// UI
	HistoryTick     = 100 * time.Millisecond // Deviation history sampling
	HistorySize     = 120                    // Deviation samples kept for the sparkline
	FPSWindow       = time.Second            // Frame-rate meter window
	SubscribeWait   = 10 * time.Second       // Connect/subscribe timeout for remote sources
	ReconnectDelay  = 2 * time.Second        // Redial delay for streaming sources
	BLEScanDeadline = 30 * time.Second       // Give up scanning for a BLE peripheral after this

	// App
	AppName    = "BUBBLE-LEVEL"
	AppVersion = "1.0"
	EnvPrefix  = "BUBBLE_LEVEL"
)
