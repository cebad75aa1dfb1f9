package termframe

// ViewportMode identifies how a viewport was selected.
type ViewportMode string

const (
	// ViewportFull covers the whole terminal.
	ViewportFull ViewportMode = "Full"
	// ViewportRegion is an explicit caller-supplied rectangle.
	ViewportRegion ViewportMode = "Region"
	// ViewportAroundCursor covers full-width rows centered on the cursor row.
	ViewportAroundCursor ViewportMode = "AroundCursor"
)

// Viewport is the screen rectangle a frame renders, in 0-based cells.
// It may extend past the terminal; rows and columns outside the captured
// screen are filled with each layer's default.
type Viewport struct {
	Mode   ViewportMode `json:"mode"`
	Left   int          `json:"left"`
	Top    int          `json:"top"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

// Empty returns true if the viewport has no cells.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Contains returns true if the absolute cell (col, row) lies inside the viewport.
func (v Viewport) Contains(col, row int) bool {
	return col >= v.Left && col < v.Left+v.Width &&
		row >= v.Top && row < v.Top+v.Height
}

// Region is a caller-requested rectangle. Left and Top default to 0.
type Region struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComputeViewport selects the visible rectangle.
//
// An explicit region wins over aroundCursor, which wins over the full screen.
// Regions are not clamped to the terminal; a region with a non-positive width
// or height produces an empty viewport.
func ComputeViewport(size Size, cursor Cursor, region *Region, aroundCursor *int) Viewport {
	switch {
	case region != nil:
		v := Viewport{
			Mode:   ViewportRegion,
			Left:   region.Left,
			Top:    region.Top,
			Width:  region.Width,
			Height: region.Height,
		}
		if v.Width <= 0 || v.Height <= 0 {
			v.Width, v.Height = 0, 0
		}
		return v

	case aroundCursor != nil:
		n := max(*aroundCursor, 0)
		// A cursor reported below the last row extends the usable height.
		height := max(size.Height, cursor.Y+1)
		return Viewport{
			Mode:   ViewportAroundCursor,
			Left:   0,
			Top:    max(0, cursor.Y-n),
			Width:  size.Width,
			Height: min(height, 2*n+1),
		}

	default:
		return Viewport{
			Mode:   ViewportFull,
			Width:  size.Width,
			Height: size.Height,
		}
	}
}
