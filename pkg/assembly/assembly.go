// Package assembly composes primitives into the furniture, pets and frames
// of a diorama.
//
// Every builder returns a fresh group whose origin sits on the floor (y = 0)
// under the centre of its footprint, with the object's front facing +Z.
// Two calls never share a node, mesh or material.
package assembly

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/taigrr/diorama/pkg/math3d"
	"github.com/taigrr/diorama/pkg/primitive"
	"github.com/taigrr/diorama/pkg/scene"
)

// ErrUnknown is returned by Build for a name missing from the Catalog.
var ErrUnknown = errors.New("unknown assembly")

// Builder returns a new, unattached assembly.
type Builder func() *scene.Node

// Catalog maps the stable names used by presets to builders.
var Catalog = map[string]Builder{
	"sofa":         Sofa,
	"coffee-table": CoffeeTable,
	"chair":        Chair,
	"bed":          Bed,
	"bookshelf":    Bookshelf,
	"floor-lamp":   FloorLamp,
	"tv-stand":     TVStand,
	"rug":          Rug,
	"plant":        Plant,
	"cat":          Cat,
	"dog":          Dog,
}

// Build looks name up in the Catalog and builds it.
func Build(name string) (*scene.Node, error) {
	b, ok := Catalog[name]
	if !ok {
		return nil, fmt.Errorf("build %q: %w", name, ErrUnknown)
	}
	return b(), nil
}

// Names returns the catalog names in sorted order.
func Names() []string {
	return slices.Sorted(maps.Keys(Catalog))
}

// at names a part and moves it to its offset within the assembly.
func at(n *scene.Node, name string, x, y, z float64) *scene.Node {
	primitive.Named(n, name)
	n.Position = math3d.V3(x, y, z)
	return n
}

// group builds a named group from parts.
func group(name string, parts ...*scene.Node) *scene.Node {
	return scene.NewGroup(name).MustAdd(parts...)
}
