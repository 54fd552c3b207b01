package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	Paused  bool
	Samples uint64
	Ignored uint64
	Frames  uint64
	Dropped uint64
	FPS     float64
	Err     error
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, st StatusInfo) string {
	status := StyleStatusRunning.Render("[RUNNING]")
	if st.Paused {
		status = StyleStatusPaused.Render("[PAUSED]")
	}

	info := fmt.Sprintf(" Samples: %s  Ignored: %s  Frames: %s  Dropped: %s  FPS: %.0f",
		humanize.Comma(int64(st.Samples)),
		humanize.Comma(int64(st.Ignored)),
		humanize.Comma(int64(st.Frames)),
		humanize.Comma(int64(st.Dropped)),
		st.FPS)

	content := status + StyleStatusBar.Padding(0).Render(info)
	if st.Err != nil {
		content += "  " + StyleStatusError.Render(st.Err.Error())
	}

	gap := width - 2 - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).MaxHeight(1).Render(content + strings.Repeat(" ", gap))
}
