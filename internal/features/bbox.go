package features

// BBox is the running extent of every emitted coordinate.
// The zero value is empty; Extend and Merge are min/max reductions,
// so partial boxes can be merged in any order.
type BBox struct {
	MinX, MaxX int
	MinY, MaxY int
	Valid      bool
}

// Extend widens the box to include a point
func (b *BBox) Extend(x, y int) {
	if !b.Valid {
		*b = BBox{MinX: x, MaxX: x, MinY: y, MaxY: y, Valid: true}
		return
	}
	if x < b.MinX {
		b.MinX = x
	}
	if x > b.MaxX {
		b.MaxX = x
	}
	if y < b.MinY {
		b.MinY = y
	}
	if y > b.MaxY {
		b.MaxY = y
	}
}

// ExtendCoords widens the box to include parallel coordinate slices
func (b *BBox) ExtendCoords(c Coords) {
	for i := range c.X {
		b.Extend(c.X[i], c.Y[i])
	}
}

// Merge widens the box to include another box
func (b *BBox) Merge(o BBox) {
	if !o.Valid {
		return
	}
	b.Extend(o.MinX, o.MinY)
	b.Extend(o.MaxX, o.MaxY)
}

// Contains reports whether a point lies inside the box
func (b BBox) Contains(x, y int) bool {
	return b.Valid && x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Size returns the extent in whole units, max - min + 1
func (b BBox) Size() (width, height int) {
	if !b.Valid {
		return 0, 0
	}
	return b.MaxX - b.MinX + 1, b.MaxY - b.MinY + 1
}
