// Package layout computes the pane sizes of the client.
package layout

// NarrowThreshold is the terminal width below which the detail pane moves
// under the result table.
const NarrowThreshold = 100

// BorderSize is the rows or columns taken by a pane's two borders.
const BorderSize = 2

// minPane is the smallest inner size of a pane.
const minPane = 3

// ContentOpts lists the rows taken around the panes.
type ContentOpts struct {
	HeaderHeight int // kind bar, input, tab bar
	JobBarHeight int // 0 without running jobs
	FooterHeight int // status and help
}

// ContentHeight returns the rows left for the panes.
func ContentHeight(windowHeight int, opts ContentOpts) int {
	return max(windowHeight-opts.HeaderHeight-opts.JobBarHeight-opts.FooterHeight, 0)
}

// IsNarrowMode reports whether panes stack vertically.
func IsNarrowMode(width int) bool {
	return width < NarrowThreshold
}

// Panes holds the outer sizes of the table and detail panes.
type Panes struct {
	TableWidth, TableHeight   int
	DetailWidth, DetailHeight int
	Narrow                    bool
}

// Inner returns the size inside the borders of a pane.
func Inner(width, height int) (int, int) {
	return max(width-BorderSize, minPane), max(height-BorderSize, minPane)
}

// Split divides the content area. Side by side, the table gets 3/5 of the
// width; stacked, it gets 3/5 of the height.
func Split(width, contentHeight int) Panes {
	if IsNarrowMode(width) {
		table := contentHeight * 3 / 5
		return Panes{
			TableWidth:   width,
			TableHeight:  table,
			DetailWidth:  width,
			DetailHeight: contentHeight - table,
			Narrow:       true,
		}
	}
	table := width * 3 / 5
	return Panes{
		TableWidth:   table,
		TableHeight:  contentHeight,
		DetailWidth:  width - table,
		DetailHeight: contentHeight,
	}
}
