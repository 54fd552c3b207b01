package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the level panel and readout horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, levelPanel, readout, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, levelPanel, readout)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}

// PanelSizes splits the terminal into the level panel and readout widths
// and the body height between the bars.
func PanelSizes(width, height int) (levelW, readoutW, bodyH int) {
	bodyH = height - 2
	if bodyH < 5 {
		bodyH = 5
	}
	levelW = width * 2 / 3
	if levelW < 20 {
		levelW = 20
	}
	readoutW = width - levelW
	if readoutW < 24 {
		readoutW = 24
		levelW = max(20, width-readoutW)
	}
	return levelW, readoutW, bodyH
}

// SurfaceCells returns the drawable cells inside a level panel of the
// given outer size: the border and title line are excluded.
func SurfaceCells(panelW, panelH int) (cols, rows int) {
	return max(0, panelW-2), max(0, panelH-3)
}
