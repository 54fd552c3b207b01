package ui

import (
	"errors"
	"math"
	"strings"
	"testing"

	"bubble-level.klederson.com/internal/level"
	"bubble-level.klederson.com/internal/sensor"
	"github.com/charmbracelet/lipgloss"
)

func TestRenderMenuBar(t *testing.T) {
	out := RenderMenuBar(80, "demo", false)
	if w := lipgloss.Width(out); w != 80 {
		t.Fatalf("width=%d want 80", w)
	}
	if !strings.Contains(out, "RUNNING") || !strings.Contains(out, "Source: demo") {
		t.Fatalf("menu bar=%q", out)
	}
	if !strings.Contains(RenderMenuBar(80, "demo", true), "PAUSED") {
		t.Fatalf("paused menu bar missing PAUSED")
	}
}

func TestRenderStatusBar(t *testing.T) {
	out := RenderStatusBar(120, StatusInfo{Samples: 1234567, Frames: 4200, Dropped: 3, FPS: 29.6})
	for _, want := range []string{"[RUNNING]", "1,234,567", "4,200", "Dropped: 3", "FPS: 30"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status bar missing %q: %q", want, out)
		}
	}
	out = RenderStatusBar(160, StatusInfo{Paused: true, Err: errors.New("broker down")})
	if !strings.Contains(out, "[PAUSED]") || !strings.Contains(out, "broker down") {
		t.Fatalf("status bar=%q", out)
	}
}

func TestPanelSizes(t *testing.T) {
	lw, rw, bh := PanelSizes(120, 40)
	if lw != 80 || rw != 40 || bh != 38 {
		t.Fatalf("sizes=%d,%d,%d", lw, rw, bh)
	}
	lw, rw, _ = PanelSizes(50, 10)
	if rw < 24 || lw+rw != 50 {
		t.Fatalf("narrow sizes=%d,%d", lw, rw)
	}
	if c, r := SurfaceCells(80, 38); c != 78 || r != 35 {
		t.Fatalf("cells=%d,%d", c, r)
	}
	if c, r := SurfaceCells(1, 1); c != 0 || r != 0 {
		t.Fatalf("tiny cells=%d,%d", c, r)
	}
}

func TestRenderLevelPanel(t *testing.T) {
	out := RenderLevelPanel(20, 8, "", false)
	if !strings.Contains(out, "waiting") {
		t.Fatalf("empty panel=%q", out)
	}
	if h := lipgloss.Height(out); h != 8 {
		t.Fatalf("height=%d want 8", h)
	}
	tall := strings.Repeat("x\n", 30)
	if h := lipgloss.Height(RenderLevelPanel(20, 8, tall, true)); h != 8 {
		t.Fatalf("overflowing frame height=%d want 8", h)
	}
}

func TestRenderCompass(t *testing.T) {
	if RenderCompass(5, 3, 0, 1, false) != "" {
		t.Fatalf("tiny compass should be empty")
	}
	right := RenderCompass(21, 9, math.Pi/2, 1, false)
	if !strings.Contains(right, ">") {
		t.Fatalf("rightward arrow missing tip:\n%s", right)
	}
	lvl := RenderCompass(21, 9, math.Pi/2, 1, true)
	if strings.Contains(lvl, ">") {
		t.Fatalf("level compass drew an arrow:\n%s", lvl)
	}
	if lines := strings.Split(lvl, "\n"); len(lines) != 9 {
		t.Fatalf("lines=%d want 9", len(lines))
	}
}

func TestDirectionName(t *testing.T) {
	tests := []struct {
		a    float64
		want string
	}{
		{0, "up"},
		{math.Pi / 2, "right"},
		{math.Pi, "down"},
		{-math.Pi / 2, "left"},
		{math.Pi / 4, "up-right"},
	}
	for _, tt := range tests {
		if got := DirectionName(tt.a); got != tt.want {
			t.Fatalf("DirectionName(%v)=%q want %q", tt.a, got, tt.want)
		}
	}
}

func TestRenderTiltBar(t *testing.T) {
	out := renderTiltBar(3, 3, 20)
	if w := lipgloss.Width(out); w < 23 {
		t.Fatalf("bar width=%d", w)
	}
	if !strings.Contains(out, "+3.0") {
		t.Fatalf("bar=%q", out)
	}
	if !strings.Contains(renderTiltBar(-9, 3, 20), "-9.0") {
		t.Fatalf("saturated bar lost its value")
	}
}

func TestSparklineAndSummary(t *testing.T) {
	if renderSparkline(nil, 10) != "" {
		t.Fatalf("empty sparkline")
	}
	s := renderSparkline([]float64{0, 10, 20, 40}, 3)
	if s != ".-^" {
		t.Fatalf("sparkline=%q", s)
	}
	if got := summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9}); got != "mean 5.0  sd 2.0  max 9.0 px" {
		t.Fatalf("summary=%q", got)
	}
	if summarize(nil) != "" {
		t.Fatalf("empty summary")
	}
}

func TestRenderReadout(t *testing.T) {
	g, _ := level.DeriveGeometry(1000, 2000, level.Metrics{Density: 1})
	last := sensor.Gravity(1.5, 0, 9.7)
	snap := level.Snapshot{
		Position: level.Point{X: 728, Y: 1000},
		Geometry: g,
		Ready:    true,
		Last:     &last,
	}
	out := RenderReadout(snap, []float64{228, 200, 150}, 40, 40)
	for _, want := range []string{"OFF-LEVEL", "+1.50", "228.0 px", "right", "mean"} {
		if !strings.Contains(out, want) {
			t.Fatalf("readout missing %q:\n%s", want, out)
		}
	}
	if h := lipgloss.Height(out); h != 40 {
		t.Fatalf("height=%d want 40", h)
	}

	snap.Position = g.Center
	snap.Level = true
	if out := RenderReadout(snap, nil, 40, 30); !strings.Contains(out, "LEVEL") || strings.Contains(out, "OFF-LEVEL") {
		t.Fatalf("level readout:\n%s", out)
	}

	empty := RenderReadout(level.Snapshot{}, nil, 30, 12)
	if !strings.Contains(empty, "no samples yet") {
		t.Fatalf("empty readout:\n%s", empty)
	}
}
