package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrItemNotFound is returned when an item ID is not in the catalog.
var ErrItemNotFound = errors.New("item not found")

// Catalog holds the item set with precomputed graph indices.
// A Catalog is immutable once built; every accessor returns copies.
type Catalog struct {
	items      []Item
	byID       map[string]int
	bySubject  map[string][]int
	subjects   []string
	dependents map[string][]string
	roots      []string
	topoOrder  []string
}

// New validates items and builds a catalog. Item order is preserved and
// serves as the catalog order used for deterministic tie-breaking.
func New(items []Item) (*Catalog, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return build(items), nil
}

// build constructs the indices. It assumes items passed validation.
func build(items []Item) *Catalog {
	c := &Catalog{
		items:      make([]Item, len(items)),
		byID:       make(map[string]int, len(items)),
		bySubject:  make(map[string][]int),
		dependents: make(map[string][]string),
	}

	for i, it := range items {
		c.items[i] = cloneItem(it)
		c.byID[it.ID] = i
		if _, seen := c.bySubject[it.Subject]; !seen {
			c.subjects = append(c.subjects, it.Subject)
		}
		c.bySubject[it.Subject] = append(c.bySubject[it.Subject], i)
		if len(it.Prerequisites) == 0 {
			c.roots = append(c.roots, it.ID)
		}
	}

	// Reverse edges, in catalog order of the dependent.
	for _, it := range c.items {
		for _, prereqID := range it.Prerequisites {
			c.dependents[prereqID] = append(c.dependents[prereqID], it.ID)
		}
	}

	// Topological order (Kahn's algorithm), seeded and expanded in catalog order.
	inDegree := make(map[string]int, len(c.items))
	for _, it := range c.items {
		inDegree[it.ID] = len(it.Prerequisites)
	}
	queue := slices.Clone(c.roots)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		c.topoOrder = append(c.topoOrder, id)
		for _, depID := range c.dependents[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	return c
}

func cloneItem(it Item) Item {
	it.Prerequisites = slices.Clone(it.Prerequisites)
	it.Tags = slices.Clone(it.Tags)
	return it
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns all items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = cloneItem(it)
	}
	return out
}

// Get returns an item by ID.
func (c *Catalog) Get(id string) (Item, error) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, id)
	}
	return cloneItem(c.items[i]), nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Subjects returns the distinct subjects in first-seen catalog order.
func (c *Catalog) Subjects() []string {
	return slices.Clone(c.subjects)
}

// BySubject returns the items of a subject in catalog order.
func (c *Catalog) BySubject(subject string) []Item {
	idx := c.bySubject[subject]
	out := make([]Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, cloneItem(c.items[i]))
	}
	return out
}

// SubjectSize returns how many items belong to subject.
func (c *Catalog) SubjectSize(subject string) int {
	return len(c.bySubject[subject])
}

// RootItems returns items with no prerequisites, in catalog order.
func (c *Catalog) RootItems() []Item {
	return c.lookup(c.roots)
}

// Prerequisites returns the direct prerequisites of id.
func (c *Catalog) Prerequisites(id string) []Item {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}
	return c.lookup(c.items[i].Prerequisites)
}

// Dependents returns items that directly require id.
func (c *Catalog) Dependents(id string) []Item {
	return c.lookup(c.dependents[id])
}

// IsUnlocked reports whether every direct prerequisite of id is in the
// completed set. Items without prerequisites are always unlocked.
func (c *Catalog) IsUnlocked(id string, completed map[string]bool) bool {
	i, ok := c.byID[id]
	if !ok {
		return false
	}
	for _, prereqID := range c.items[i].Prerequisites {
		if !completed[prereqID] {
			return false
		}
	}
	return true
}

// TopologicalOrder returns all items so that prerequisites precede dependents.
func (c *Catalog) TopologicalOrder() []Item {
	return c.lookup(c.topoOrder)
}

// Order names a listing order for Ordered.
type Order string

const (
	OrderCatalog    Order = "catalog"
	OrderTopo       Order = "topo"
	OrderDifficulty Order = "difficulty"
)

// Orders returns the supported listing orders.
func Orders() []Order {
	return []Order{OrderCatalog, OrderTopo, OrderDifficulty}
}

// Ordered returns all items in the given order. Difficulty order is stable,
// so items of equal difficulty keep their catalog order.
func (c *Catalog) Ordered(order Order) ([]Item, error) {
	switch order {
	case "", OrderCatalog:
		return c.Items(), nil
	case OrderTopo:
		return c.TopologicalOrder(), nil
	case OrderDifficulty:
		items := c.Items()
		slices.SortStableFunc(items, func(a, b Item) int {
			switch {
			case a.Difficulty.Less(b.Difficulty):
				return -1
			case b.Difficulty.Less(a.Difficulty):
				return 1
			}
			return 0
		})
		return items, nil
	}
	return nil, fmt.Errorf("unknown order %q (want one of %v)", order, Orders())
}

// WithTag returns the items carrying tag, preserving their order.
func WithTag(items []Item, tag string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.HasTag(tag) {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) lookup(ids []string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		if i, ok := c.byID[id]; ok {
			out = append(out, cloneItem(c.items[i]))
		}
	}
	return out
}
