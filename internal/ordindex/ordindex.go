package ordindex

import "errors"

var (
	ErrDuplicateKey = errors.New("Key already present in index")
	ErrKeyNotFound  = errors.New("Key not present in index")
)

// Entry is one (start time, reservation id) pair held by the index.
type Entry struct {
	Key   int64
	Value uint64
}

// Tree is an ordered map from start time to reservation id, backed by a
// left-leaning red-black tree augmented with subtree sizes so rank selection
// is O(log n) like every other operation.
type Tree struct {
	root *node
}

type node struct {
	entry Entry
	left  *node
	right *node
	red   bool
	size  int
}

func New() *Tree {
	return &Tree{}
}

// Size returns the number of entries.
func (t *Tree) Size() int {
	return size(t.root)
}

// Get returns the value stored under key.
func (t *Tree) Get(key int64) (uint64, bool) {
	h := t.root
	for h != nil {
		switch {
		case key < h.entry.Key:
			h = h.left
		case key > h.entry.Key:
			h = h.right
		default:
			return h.entry.Value, true
		}
	}
	return 0, false
}

// Insert adds an entry; keys are unique per index.
func (t *Tree) Insert(key int64, value uint64) error {
	if _, ok := t.Get(key); ok {
		return ErrDuplicateKey
	}
	t.root = insert(t.root, key, value)
	t.root.red = false
	return nil
}

// Remove deletes the entry under key.
func (t *Tree) Remove(key int64) error {
	if _, ok := t.Get(key); !ok {
		return ErrKeyNotFound
	}
	if !isRed(t.root.left) && !isRed(t.root.right) {
		t.root.red = true
	}
	t.root = remove(t.root, key)
	if t.root != nil {
		t.root.red = false
	}
	return nil
}

// Floor returns the entry with the greatest key <= key.
func (t *Tree) Floor(key int64) (Entry, bool) {
	var best *node
	h := t.root
	for h != nil {
		switch {
		case key < h.entry.Key:
			h = h.left
		case key > h.entry.Key:
			best = h
			h = h.right
		default:
			return h.entry, true
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return best.entry, true
}

// Ceiling returns the entry with the least key >= key.
func (t *Tree) Ceiling(key int64) (Entry, bool) {
	var best *node
	h := t.root
	for h != nil {
		switch {
		case key > h.entry.Key:
			h = h.right
		case key < h.entry.Key:
			best = h
			h = h.left
		default:
			return h.entry, true
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return best.entry, true
}

// Higher returns the entry with the least key strictly greater than key.
func (t *Tree) Higher(key int64) (Entry, bool) {
	var best *node
	h := t.root
	for h != nil {
		if key < h.entry.Key {
			best = h
			h = h.left
		} else {
			h = h.right
		}
	}
	if best == nil {
		return Entry{}, false
	}
	return best.entry, true
}

// SelectByRank returns the i-th smallest entry, 0-indexed.
func (t *Tree) SelectByRank(i int) (Entry, bool) {
	if i < 0 || i >= size(t.root) {
		return Entry{}, false
	}
	h := t.root
	for {
		leftSize := size(h.left)
		switch {
		case i < leftSize:
			h = h.left
		case i > leftSize:
			i -= leftSize + 1
			h = h.right
		default:
			return h.entry, true
		}
	}
}

func size(h *node) int {
	if h == nil {
		return 0
	}
	return h.size
}

func isRed(h *node) bool {
	return h != nil && h.red
}

func insert(h *node, key int64, value uint64) *node {
	if h == nil {
		return &node{entry: Entry{Key: key, Value: value}, red: true, size: 1}
	}
	switch {
	case key < h.entry.Key:
		h.left = insert(h.left, key, value)
	case key > h.entry.Key:
		h.right = insert(h.right, key, value)
	default:
		h.entry.Value = value
	}
	return fixUp(h)
}

func remove(h *node, key int64) *node {
	if key < h.entry.Key {
		if !isRed(h.left) && !isRed(h.left.left) {
			h = moveRedLeft(h)
		}
		h.left = remove(h.left, key)
	} else {
		if isRed(h.left) {
			h = rotateRight(h)
		}
		if key == h.entry.Key && h.right == nil {
			return nil
		}
		if !isRed(h.right) && !isRed(h.right.left) {
			h = moveRedRight(h)
		}
		if key == h.entry.Key {
			m := h.right
			for m.left != nil {
				m = m.left
			}
			h.entry = m.entry
			h.right = removeMin(h.right)
		} else {
			h.right = remove(h.right, key)
		}
	}
	return fixUp(h)
}

func removeMin(h *node) *node {
	if h.left == nil {
		return nil
	}
	if !isRed(h.left) && !isRed(h.left.left) {
		h = moveRedLeft(h)
	}
	h.left = removeMin(h.left)
	return fixUp(h)
}

func rotateLeft(h *node) *node {
	x := h.right
	h.right = x.left
	x.left = h
	x.red = h.red
	h.red = true
	x.size = h.size
	h.size = 1 + size(h.left) + size(h.right)
	return x
}

func rotateRight(h *node) *node {
	x := h.left
	h.left = x.right
	x.right = h
	x.red = h.red
	h.red = true
	x.size = h.size
	h.size = 1 + size(h.left) + size(h.right)
	return x
}

func flipColors(h *node) {
	h.red = !h.red
	h.left.red = !h.left.red
	h.right.red = !h.right.red
}

func moveRedLeft(h *node) *node {
	flipColors(h)
	if isRed(h.right.left) {
		h.right = rotateRight(h.right)
		h = rotateLeft(h)
		flipColors(h)
	}
	return h
}

func moveRedRight(h *node) *node {
	flipColors(h)
	if isRed(h.left.left) {
		h = rotateRight(h)
		flipColors(h)
	}
	return h
}

func fixUp(h *node) *node {
	if isRed(h.right) && !isRed(h.left) {
		h = rotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}
	h.size = 1 + size(h.left) + size(h.right)
	return h
}
