package osmdata

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/paulmach/osm"

	"github.com/wegman-software/osm2mt-go/internal/diag"
	"github.com/wegman-software/osm2mt-go/internal/tags"
)

// overpassDocument is the top level of an Overpass API JSON response
type overpassDocument struct {
	Elements []json.RawMessage `json:"elements"`
}

type overpassElement struct {
	Type    string            `json:"type"`
	ID      int64             `json:"id"`
	Lat     *float64          `json:"lat"`
	Lon     *float64          `json:"lon"`
	Nodes   []int64           `json:"nodes"`
	Members []overpassMember  `json:"members"`
	Tags    map[string]string `json:"tags"`
}

type overpassMember struct {
	Type string `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

// DecodeJSON reads an Overpass JSON document. Elements that cannot be
// decoded, or whose type is unknown, are recorded in Dataset.Skipped.
func DecodeJSON(ctx context.Context, r io.Reader) (*Dataset, error) {
	var doc overpassDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode overpass json: %w", err)
	}

	ds := &Dataset{}
	for i, raw := range doc.Elements {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		var e overpassElement
		if err := json.Unmarshal(raw, &e); err != nil {
			ds.Skipped = append(ds.Skipped, diag.Diagnostic{
				Reason:  diag.MalformedElement,
				Element: diag.Ref{Type: "element", ID: int64(i)},
				Detail:  err.Error(),
			})
			continue
		}
		if d, ok := ds.addOverpass(&e); !ok {
			ds.Skipped = append(ds.Skipped, d)
		}
	}
	return ds, nil
}

func (d *Dataset) addOverpass(e *overpassElement) (diag.Diagnostic, bool) {
	ref := diag.Ref{Type: e.Type, ID: e.ID}
	osmTags := tags.Tags(e.Tags).ToOSM()

	switch e.Type {
	case "node":
		if e.Lat == nil || e.Lon == nil {
			return diag.Diagnostic{Reason: diag.MalformedElement, Element: ref, Detail: "node without lat/lon"}, false
		}
		d.Nodes = append(d.Nodes, &osm.Node{ID: osm.NodeID(e.ID), Lat: *e.Lat, Lon: *e.Lon, Tags: osmTags})

	case "way":
		w := &osm.Way{ID: osm.WayID(e.ID), Tags: osmTags}
		w.Nodes = make(osm.WayNodes, len(e.Nodes))
		for i, n := range e.Nodes {
			w.Nodes[i] = osm.WayNode{ID: osm.NodeID(n)}
		}
		d.Ways = append(d.Ways, w)

	case "relation", "multipolygon":
		rel := &osm.Relation{ID: osm.RelationID(e.ID), Tags: osmTags}
		rel.Members = make(osm.Members, len(e.Members))
		for i, m := range e.Members {
			rel.Members[i] = osm.Member{Type: osm.Type(m.Type), Ref: m.Ref, Role: m.Role}
		}
		d.Relations = append(d.Relations, rel)

	default:
		return diag.Diagnostic{Reason: diag.UnknownType, Element: ref, Detail: fmt.Sprintf("type %q", e.Type)}, false
	}
	return diag.Diagnostic{}, true
}
