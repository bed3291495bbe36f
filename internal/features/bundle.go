package features

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// Bundle is the output document. Bounds are null for an empty run.
type Bundle struct {
	MinX        *int                    `json:"min_x"`
	MaxX        *int                    `json:"max_x"`
	MinY        *int                    `json:"min_y"`
	MaxY        *int                    `json:"max_y"`
	Areas       Areas                   `json:"areas"`
	Buildings   []Building              `json:"buildings"`
	Decorations map[string][]Decoration `json:"decorations"`
	Highways    []Linear                `json:"highways"`
	Waterways   []Linear                `json:"waterways"`
}

// Bounds returns the bounding box recorded in the bundle
func (b *Bundle) Bounds() BBox {
	if b.MinX == nil || b.MaxX == nil || b.MinY == nil || b.MaxY == nil {
		return BBox{}
	}
	return BBox{MinX: *b.MinX, MaxX: *b.MaxX, MinY: *b.MinY, MaxY: *b.MaxY, Valid: true}
}

// DecorationKinds returns the decoration kinds present, sorted
func (b *Bundle) DecorationKinds() []string {
	kinds := make([]string, 0, len(b.Decorations))
	for k := range b.Decorations {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Counts summarizes a bundle per collection
type Counts struct {
	Outer, Inner, Low, Medium, High int
	Buildings                       int
	Highways, Waterways             int
	Decorations                     int
}

// Total returns the number of features
func (c Counts) Total() int {
	return c.Outer + c.Inner + c.Low + c.Medium + c.High + c.Buildings + c.Highways + c.Waterways + c.Decorations
}

// Counts returns the per-collection feature counts
func (b *Bundle) Counts() Counts {
	c := Counts{
		Outer:     len(b.Areas.Outer),
		Inner:     len(b.Areas.Inner),
		Low:       len(b.Areas.Low),
		Medium:    len(b.Areas.Medium),
		High:      len(b.Areas.High),
		Buildings: len(b.Buildings),
		Highways:  len(b.Highways),
		Waterways: len(b.Waterways),
	}
	for _, ds := range b.Decorations {
		c.Decorations += len(ds)
	}
	return c
}

// WriteJSON encodes the bundle with 2-space indentation
func (b *Bundle) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	return nil
}

// WriteFile writes the bundle to path
func (b *Bundle) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := b.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON decodes a bundle
func ReadJSON(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	for kind, ds := range b.Decorations {
		for i := range ds {
			ds[i].Kind = kind
		}
	}
	return &b, nil
}

// ReadFile decodes the bundle stored at path
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}
