package features

// Aggregator accumulates features for one pass and tracks their extent.
// An Aggregator is not safe for concurrent use; concurrent passes each own
// one and the results are merged afterwards.
type Aggregator struct {
	areas       Areas
	buildings   []Building
	highways    []Linear
	waterways   []Linear
	decorations map[string][]Decoration
	bbox        BBox
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{decorations: make(map[string][]Decoration)}
}

// AddArea adds a way area to the bucket of its level
func (a *Aggregator) AddArea(area Area) {
	bucket := a.areas.Level(area.Level)
	*bucket = append(*bucket, area)
	a.bbox.ExtendCoords(area.Coords)
}

// AddOuter adds a relation outer ring
func (a *Aggregator) AddOuter(area Area) {
	a.areas.Outer = append(a.areas.Outer, area)
	a.bbox.ExtendCoords(area.Coords)
}

// AddInner adds a relation hole ring
func (a *Aggregator) AddInner(area Area) {
	a.areas.Inner = append(a.areas.Inner, area)
	a.bbox.ExtendCoords(area.Coords)
}

func (a *Aggregator) AddBuilding(b Building) {
	a.buildings = append(a.buildings, b)
	a.bbox.ExtendCoords(b.Coords)
}

func (a *Aggregator) AddHighway(l Linear) {
	a.highways = append(a.highways, l)
	a.bbox.ExtendCoords(l.Coords)
}

func (a *Aggregator) AddWaterway(l Linear) {
	a.waterways = append(a.waterways, l)
	a.bbox.ExtendCoords(l.Coords)
}

// AddDecoration adds a decoration under its kind
func (a *Aggregator) AddDecoration(d Decoration) {
	a.decorations[d.Kind] = append(a.decorations[d.Kind], d)
	a.bbox.ExtendCoords(d.Coords)
}

// BBox returns the extent of everything added so far
func (a *Aggregator) BBox() BBox { return a.bbox }

// Merge appends everything from o, after the features already held
func (a *Aggregator) Merge(o *Aggregator) {
	a.areas.Outer = append(a.areas.Outer, o.areas.Outer...)
	a.areas.Inner = append(a.areas.Inner, o.areas.Inner...)
	a.areas.Low = append(a.areas.Low, o.areas.Low...)
	a.areas.Medium = append(a.areas.Medium, o.areas.Medium...)
	a.areas.High = append(a.areas.High, o.areas.High...)
	a.buildings = append(a.buildings, o.buildings...)
	a.highways = append(a.highways, o.highways...)
	a.waterways = append(a.waterways, o.waterways...)
	for kind, ds := range o.decorations {
		a.decorations[kind] = append(a.decorations[kind], ds...)
	}
	a.bbox.Merge(o.bbox)
}

// Bundle builds the output document. Empty collections encode as [].
func (a *Aggregator) Bundle() *Bundle {
	b := &Bundle{
		Areas: Areas{
			Outer:  nonNil(a.areas.Outer),
			Inner:  nonNil(a.areas.Inner),
			Low:    nonNil(a.areas.Low),
			Medium: nonNil(a.areas.Medium),
			High:   nonNil(a.areas.High),
		},
		Buildings:   a.buildings,
		Decorations: make(map[string][]Decoration, len(a.decorations)),
		Highways:    a.highways,
		Waterways:   a.waterways,
	}
	if b.Buildings == nil {
		b.Buildings = []Building{}
	}
	if b.Highways == nil {
		b.Highways = []Linear{}
	}
	if b.Waterways == nil {
		b.Waterways = []Linear{}
	}
	for kind, ds := range a.decorations {
		b.Decorations[kind] = ds
	}

	if a.bbox.Valid {
		minX, maxX, minY, maxY := a.bbox.MinX, a.bbox.MaxX, a.bbox.MinY, a.bbox.MaxY
		b.MinX, b.MaxX, b.MinY, b.MaxY = &minX, &maxX, &minY, &maxY
	}
	return b
}

func nonNil(areas []Area) []Area {
	if areas == nil {
		return []Area{}
	}
	return areas
}
