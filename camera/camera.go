// Package camera provides a 2D camera for viewing the bounded particle world.
package camera

// Camera controls the viewport into the simulation world.
// Supports pan and zoom; the view centre is kept over the world box.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World box the camera is clamped to
	Left, Top, Right, Bottom float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the world box with 1:1 zoom.
func New(viewportW, viewportH, left, top, right, bottom float32) *Camera {
	c := &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		Left:      left,
		Top:       top,
		Right:     right,
		Bottom:    bottom,
		MaxZoom:   8.0,
	}
	c.MinZoom = c.fitZoom() / 2
	c.Reset()
	return c
}

// fitZoom is the zoom at which the whole world box fits the viewport.
func (c *Camera) fitZoom() float32 {
	w, h := c.Right-c.Left, c.Bottom-c.Top
	if w <= 0 || h <= 0 {
		return 1
	}
	return min(c.ViewportW/w, c.ViewportH/h)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom() / 2
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampCenter()
}

// SetWorld replaces the world box and recenters the camera.
func (c *Camera) SetWorld(left, top, right, bottom float32) {
	c.Left, c.Top, c.Right, c.Bottom = left, top, right, bottom
	c.MinZoom = c.fitZoom() / 2
	c.Reset()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centres the camera on the world at 1:1 zoom, or zoomed out far
// enough to show the whole box when it is larger than the viewport.
func (c *Camera) Reset() {
	c.X = (c.Left + c.Right) / 2
	c.Y = (c.Top + c.Bottom) / 2
	c.Zoom = clamp(min(1, c.fitZoom()), c.MinZoom, c.MaxZoom)
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
// Returns (minX, minY, maxX, maxY) in world coordinates.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = c.X - halfW
	maxX = c.X + halfW
	minY = c.Y - halfH
	maxY = c.Y + halfH
	return
}

// clampCenter keeps the view centre over the world box. When the view is
// wider than the box on an axis the box is centred on that axis.
func (c *Camera) clampCenter() {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	c.X = clampAxis(c.X, c.Left, c.Right, halfW)
	c.Y = clampAxis(c.Y, c.Top, c.Bottom, halfH)
}

func clampAxis(v, lo, hi, half float32) float32 {
	if hi-lo <= 2*half {
		return (lo + hi) / 2
	}
	return clamp(v, lo+half, hi-half)
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
