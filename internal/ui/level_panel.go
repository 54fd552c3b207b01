package ui

import "strings"

// RenderLevelPanel wraps the last posted surface frame with a border that
// lights up while the bubble is level.
func RenderLevelPanel(width, height int, frame string, level bool) string {
	style := StylePanelBorder
	if level {
		style = StylePanelLevel
	}
	if frame == "" {
		frame = StyleHelp.Render(" waiting for first frame...")
	}
	content := StylePanelTitle.Render("LEVEL") + "\n" + frame
	lines := strings.Split(content, "\n")
	if len(lines) > height-2 && height > 2 {
		content = strings.Join(lines[:height-2], "\n")
	}
	return style.Width(width - 2).Height(height - 2).Render(content)
}
