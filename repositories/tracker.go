package repositories

type entryState int

const (
	stateUnchanged entryState = iota
	stateAdded
	stateModified
	stateDeleted
)

type trackedEntry[T any] struct {
	entity   *T
	original T
	state    entryState
}

// changeTracker is a tiny identity map with snapshot-based change detection.
type changeTracker[T any] struct {
	entries []*trackedEntry[T]
	idOf    func(*T) int
	equal   func(a, b *T) bool
}

func newChangeTracker[T any](idOf func(*T) int, equal func(a, b *T) bool) *changeTracker[T] {
	return &changeTracker[T]{idOf: idOf, equal: equal}
}

func (c *changeTracker[T]) find(e *T) *trackedEntry[T] {
	for _, en := range c.entries {
		if en.entity == e {
			return en
		}
	}
	if id := c.idOf(e); id != 0 {
		for _, en := range c.entries {
			if en.state != stateAdded && c.idOf(en.entity) == id {
				return en
			}
		}
	}
	return nil
}

// lookup returns the tracked instance for id, if any.
func (c *changeTracker[T]) lookup(id int) (*T, bool) {
	for _, en := range c.entries {
		if en.state != stateAdded && en.state != stateDeleted && c.idOf(en.entity) == id {
			return en.entity, true
		}
	}
	return nil, false
}

func (c *changeTracker[T]) attach(e *T) *T {
	if en := c.find(e); en != nil {
		return en.entity
	}
	c.entries = append(c.entries, &trackedEntry[T]{entity: e, original: *e, state: stateUnchanged})
	return e
}

func (c *changeTracker[T]) add(e *T) {
	if en := c.find(e); en != nil && en.entity == e {
		return
	}
	c.entries = append(c.entries, &trackedEntry[T]{entity: e, state: stateAdded})
}

func (c *changeTracker[T]) markModified(e *T) {
	en := c.find(e)
	if en == nil {
		c.entries = append(c.entries, &trackedEntry[T]{entity: e, original: *e, state: stateModified})
		return
	}
	en.entity = e
	if en.state == stateUnchanged {
		en.state = stateModified
	}
}

func (c *changeTracker[T]) markDeleted(e *T) {
	en := c.find(e)
	if en == nil {
		c.entries = append(c.entries, &trackedEntry[T]{entity: e, original: *e, state: stateDeleted})
		return
	}
	if en.state == stateAdded {
		c.drop(en)
		return
	}
	en.entity = e
	en.state = stateDeleted
}

func (c *changeTracker[T]) drop(target *trackedEntry[T]) {
	kept := c.entries[:0]
	for _, en := range c.entries {
		if en != target {
			kept = append(kept, en)
		}
	}
	c.entries = kept
}

func (c *changeTracker[T]) pending() (added, modified, deleted []*T) {
	for _, en := range c.entries {
		switch en.state {
		case stateAdded:
			added = append(added, en.entity)
		case stateModified:
			modified = append(modified, en.entity)
		case stateDeleted:
			deleted = append(deleted, en.entity)
		case stateUnchanged:
			if !c.equal(en.entity, &en.original) {
				modified = append(modified, en.entity)
			}
		}
	}
	return added, modified, deleted
}

func (c *changeTracker[T]) hasChanges() bool {
	added, modified, deleted := c.pending()
	return len(added)+len(modified)+len(deleted) > 0
}

// accept is called after a successful commit: deleted entries are forgotten,
// everything else becomes the new unchanged baseline.
func (c *changeTracker[T]) accept() {
	kept := c.entries[:0]
	for _, en := range c.entries {
		if en.state == stateDeleted {
			continue
		}
		en.state = stateUnchanged
		en.original = *en.entity
		kept = append(kept, en)
	}
	c.entries = kept
}
