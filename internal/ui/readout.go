package ui

import (
	"fmt"
	"math"
	"strings"

	"bubble-level.klederson.com/internal/config"
	"bubble-level.klederson.com/internal/level"
	"github.com/charmbracelet/lipgloss"
	"github.com/montanaflynn/stats"
)

// RenderReadout renders the numeric side panel: gravity components, tilt,
// drift direction, deviation history and a compass.
func RenderReadout(snap level.Snapshot, history []float64, width, height int) string {
	innerW := max(20, width-4)

	title := StylePanelTitle.Render("READOUT")
	badge := StyleBadgeOff.Render("OFF-LEVEL")
	if snap.Level {
		badge = StyleBadgeLevel.Render("LEVEL")
	}
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(badge))) + badge
	sep := StyleSeparator.Render(strings.Repeat("-", innerW))

	lines := []string{titleLine, sep, ""}

	var gx, gy, gz float64
	if snap.Last != nil {
		gx, gy, gz = snap.Last.X(), snap.Last.Y(), snap.Last.Z()
	}
	off := snap.Offset()
	heading := level.Heading(off)
	deviation := off.Len()

	fields := []struct{ label, value string }{
		{"Gravity X", fmt.Sprintf("%+.2f m/s²", gx)},
		{"Gravity Y", fmt.Sprintf("%+.2f m/s²", gy)},
		{"Gravity Z", fmt.Sprintf("%+.2f m/s²", gz)},
		{"Tilt", fmt.Sprintf("%.1f°", level.TiltDegrees(gx, gy, gz))},
		{"Drift", fmt.Sprintf("%.0f° %s", heading*180/math.Pi, DirectionName(heading))},
		{"Deviation", fmt.Sprintf("%.1f px", deviation)},
	}
	switch {
	case snap.Last == nil:
		fields = fields[:0]
		lines = append(lines, StyleHelp.Render("  no samples yet"))
	case !snap.Ready:
		fields = fields[:4]
	}
	for _, f := range fields {
		lines = append(lines, StyleLabel.Render(fmt.Sprintf("  %-10s", f.label))+StyleValue.Render(f.value))
	}
	lines = append(lines, "")

	barW := max(10, innerW-14)
	lines = append(lines,
		StyleLabel.Render("  X ")+renderTiltBar(gx, config.MaxGravity, barW),
		StyleLabel.Render("  Y ")+renderTiltBar(gy, config.MaxGravity, barW),
		"")

	if len(history) > 0 {
		lines = append(lines, StyleLabel.Render("  Deviation History:"))
		lines = append(lines, "  "+StyleSpark.Render(renderSparkline(history, max(10, innerW-4))))
		lines = append(lines, "  "+StyleLabel.Render(summarize(history)))
		lines = append(lines, "")
	}

	compassH := height - len(lines) - 3
	if compassH >= 5 {
		compassW := min(innerW, compassH*3)
		strength := 0.0
		if reach := snap.Geometry.MaxReach(); reach > 0 {
			strength = deviation / reach
		}
		compass := RenderCompass(compassW, compassH, heading, strength, snap.Level)
		prefix := strings.Repeat(" ", max(0, (innerW-compassW)/2))
		for _, cl := range strings.Split(compass, "\n") {
			lines = append(lines, prefix+cl)
		}
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}
	if len(lines) > height-2 && height > 2 {
		lines = lines[:height-2]
	}

	style := StylePanelBorder
	if snap.Level {
		style = StylePanelLevel
	}
	return style.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

// renderTiltBar draws a centered bar: filled to the right for positive
// values, to the left for negative ones, saturating at ±limit.
func renderTiltBar(v, limit float64, width int) string {
	half := width / 2
	ratio := math.Max(-1, math.Min(1, v/limit))
	n := int(math.Round(math.Abs(ratio) * float64(half)))

	left := []byte(strings.Repeat("-", half))
	right := []byte(strings.Repeat("-", half))
	for i := 0; i < n; i++ {
		if ratio < 0 {
			left[half-1-i] = '|'
		} else {
			right[i] = '|'
		}
	}
	fill := lipgloss.NewStyle().Foreground(ColorGray)
	if n == 0 {
		fill = lipgloss.NewStyle().Foreground(ColorLime)
	}
	return StyleHelp.Render("[") +
		colorBar(string(left), fill) +
		StyleMenuKey.Render("|") +
		colorBar(string(right), fill) +
		StyleHelp.Render("]") +
		StyleValue.Render(fmt.Sprintf(" %+.1f", v))
}

func colorBar(s string, fill lipgloss.Style) string {
	var sb strings.Builder
	for _, ch := range s {
		if ch == '|' {
			sb.WriteString(fill.Render(string(ch)))
		} else {
			sb.WriteString(StyleSeparator.Render(string(ch)))
		}
	}
	return sb.String()
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	if len(values) > width {
		values = values[len(values)-width:]
	}
	maxV, _ := stats.Max(values)
	rng := math.Max(maxV, 1)

	var sb strings.Builder
	for _, v := range values {
		idx := int(v / rng * float64(len(chars)-1))
		idx = max(0, min(len(chars)-1, idx))
		sb.WriteByte(chars[idx])
	}
	return sb.String()
}

func summarize(values []float64) string {
	mean, err := stats.Mean(values)
	if err != nil {
		return ""
	}
	sd, _ := stats.StandardDeviation(values)
	peak, _ := stats.Max(values)
	return fmt.Sprintf("mean %.1f  sd %.1f  max %.1f px", mean, sd, peak)
}
