// Package layout decides how the dashboard is laid out for a given width.
// Widths are in layout units (pixel-equivalents); the TUI converts terminal
// cells with CellWidth before asking.
package layout

// Breakpoints, in layout units.
const (
	BreakpointSmall   = 640
	BreakpointSidebar = 768
	BreakpointDesktop = 1024
	BreakpointWide    = 1200
)

// GridColumns returns how many post cards fit side by side.
func GridColumns(width int, panelExpanded bool) int {
	switch {
	case width < BreakpointSmall:
		return 1
	case width < BreakpointDesktop:
		if panelExpanded {
			return 1
		}
		return 2
	case panelExpanded:
		if width < BreakpointWide {
			return 2
		}
		return 3
	default:
		if width < BreakpointWide {
			return 3
		}
		return 4
	}
}

// SidebarIsOverlay reports whether an open sidebar floats over the content
// and is dismissed by acting outside it.
func SidebarIsOverlay(width int) bool {
	return width < BreakpointSidebar
}

// DefaultSidebarExpanded is the sidebar state for a freshly sized viewport.
func DefaultSidebarExpanded(width int) bool {
	return width >= BreakpointSidebar
}

// CellWidth converts terminal columns into layout units.
func CellWidth(columns, pxPerCell int) int {
	if pxPerCell < 1 {
		pxPerCell = 1
	}
	return columns * pxPerCell
}
