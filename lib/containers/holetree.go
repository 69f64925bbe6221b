// Copyright (C) 2022-2024  Eric Anger <eanger@gmail.com>
//
// SPDX-License-Identifier: GPL-2.0-or-later

package containers

import "fmt"

// Color is the color of a node in a HoleTree.
type Color bool

const (
	Black Color = false
	Red   Color = true
)

// nodeIdx indexes in to HoleTree.nodes.  Index 0 is reserved for the
// shared sentinel leaf, so a zero nodeIdx reads the same as a nil
// pointer would in a pointer-based tree.
type nodeIdx int32

const sentinelIdx nodeIdx = 0

// holeNode is one node of a HoleTree: a maximal run of timestamps,
// [LeftKey, RightKey], none of which are currently associated with
// the reference being evaluated.
type holeNode struct {
	Parent, Left, Right nodeIdx
	Color               Color

	LeftKey, RightKey uint64

	// Sum is the total width (RightKey-LeftKey+1, summed) of every
	// node in this node's right subtree.  It is maintained
	// incrementally rather than by recomputing from children: every
	// right-descent through this node during Distance bumps it by
	// one, and the two merge cases and the two rotations apply the
	// deltas worked out for each transform.
	Sum uint64
}

func (n holeNode) width() uint64 {
	return n.RightKey - n.LeftKey + 1
}

// HoleTree is an augmented red-black tree over disjoint, pairwise
// non-adjacent timestamp intervals ("holes").  Its single public
// operation, Distance, is the reuse-distance correction term: it
// reports how many hole-timestamps are currently stored above a given
// value, and then records that value as a new hole.
//
// Nodes live in an arena (the nodes slice) addressed by index rather
// than by pointer, so that parent/child/sentinel references never form
// a reference cycle and the whole tree can be discarded by dropping
// the slice.
//
// A HoleTree is not safe for concurrent use; callers needing
// concurrent access to the model this tree backs should serialize
// through a single owning thread, as PerThreadModel does.
type HoleTree struct {
	nodes []holeNode
	free  []nodeIdx
	root  nodeIdx
	len   int
}

// Len returns the total number of hole-timestamps ever recorded via
// Distance. Hole-timestamps are never removed, only coalesced into
// fewer nodes as adjacent intervals merge, so this is a plain call
// counter. It is exposed for tests and diagnostics; it is not part of
// the reuse-distance contract.
func (t *HoleTree) Len() int {
	return t.len
}

func (t *HoleTree) ensureSentinel() {
	if len(t.nodes) == 0 {
		t.nodes = make([]holeNode, 1) // nodes[sentinelIdx] is the zero value: Black, width 0.
	}
}

func (t *HoleTree) color(idx nodeIdx) Color {
	if idx == sentinelIdx {
		return Black
	}
	return t.nodes[idx].Color
}

func (t *HoleTree) alloc(left, right uint64, parent nodeIdx) nodeIdx {
	n := holeNode{
		LeftKey: left, RightKey: right,
		Left: sentinelIdx, Right: sentinelIdx, Parent: parent,
		Color: Red,
	}
	if len(t.free) > 0 {
		idx := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[idx] = n
		return idx
	}
	t.nodes = append(t.nodes, n)
	return nodeIdx(len(t.nodes) - 1)
}

func (t *HoleTree) release(idx nodeIdx) {
	t.nodes[idx] = holeNode{}
	t.free = append(t.free, idx)
}

// Distance is the public contract of the interval tree: the caller
// asserts that hole is a brand-new hole-timestamp, not currently
// covered by any stored interval and never passed to Distance before.
// Distance returns the number of hole-timestamps strictly greater
// than hole that are currently stored, and then inserts hole into the
// tree, merging it with an adjacent interval if one abuts it.
//
// It is a panic to call Distance with a value already covered by a
// stored interval; that is a contract violation by the caller, not a
// recoverable condition.
func (t *HoleTree) Distance(hole uint64) uint64 {
	t.ensureSentinel()
	t.len++
	if t.root == sentinelIdx {
		idx := t.alloc(hole, hole, sentinelIdx)
		t.nodes[idx].Color = Black
		t.root = idx
		return 0
	}

	var total uint64
	cur := t.root
	for {
		n := t.nodes[cur]
		switch {
		case hole+1 < n.LeftKey: // strictly left, with a gap
			total += n.width() + n.Sum
			if n.Left == sentinelIdx {
				idx := t.alloc(hole, hole, cur)
				t.nodes[cur].Left = idx
				t.insertRebalance(idx)
				return total
			}
			cur = n.Left

		case hole > n.RightKey+1: // strictly right, with a gap
			t.nodes[cur].Sum++
			if n.Right == sentinelIdx {
				idx := t.alloc(hole, hole, cur)
				t.nodes[cur].Right = idx
				t.insertRebalance(idx)
				return total
			}
			cur = n.Right

		case hole+1 == n.LeftKey: // abuts on the left
			ret := total + (n.RightKey - hole) + n.Sum
			t.mergeLeft(cur, hole)
			return ret

		case hole == n.RightKey+1: // abuts on the right
			ret := total + n.Sum
			t.mergeRight(cur, hole)
			return ret

		default:
			panic(fmt.Errorf("holetree: Distance(%d) called with a timestamp already covered by [%d,%d]", hole, n.LeftKey, n.RightKey))
		}
	}
}

// mergeLeft handles the hole+1 == node.LeftKey case: hole abuts the
// node's interval from below.  If the node's left subtree holds a
// node adjacent to hole (its in-order predecessor), that node is
// absorbed and removed; otherwise the node's LeftKey simply extends
// down to hole.
func (t *HoleTree) mergeLeft(node nodeIdx, hole uint64) {
	left := t.nodes[node].Left
	if left == sentinelIdx {
		t.nodes[node].LeftKey = hole
		return
	}
	pred := t.rightmost(left)
	if t.nodes[pred].RightKey+1 != hole {
		t.nodes[node].LeftKey = hole
		return
	}

	predWidth := t.nodes[pred].width()
	// Every node strictly between node.Left and pred, inclusive of
	// node.Left, was reached by departing on a right-link to get
	// closer to pred; pred's width was counted in each of their
	// Sums, and must leave now that pred is gone.
	for y := left; y != pred; y = t.nodes[y].Right {
		t.nodes[y].Sum -= predWidth
	}
	t.nodes[node].LeftKey = t.nodes[pred].LeftKey
	t.deleteNode(pred)
}

// mergeRight handles the hole == node.RightKey+1 case: hole abuts the
// node's interval from above.  Symmetric to mergeLeft, but the
// in-order successor lives inside node's own right subtree, so it is
// node's own Sum (and only node's) that loses the absorbed width.
func (t *HoleTree) mergeRight(node nodeIdx, hole uint64) {
	right := t.nodes[node].Right
	if right == sentinelIdx {
		t.nodes[node].RightKey = hole
		return
	}
	succ := t.leftmost(right)
	if t.nodes[succ].LeftKey != hole+1 {
		t.nodes[node].RightKey = hole
		return
	}

	succWidth := t.nodes[succ].width()
	t.nodes[node].Sum -= succWidth
	t.nodes[node].RightKey = t.nodes[succ].RightKey
	t.deleteNode(succ)
}

func (t *HoleTree) rightmost(idx nodeIdx) nodeIdx {
	for t.nodes[idx].Right != sentinelIdx {
		idx = t.nodes[idx].Right
	}
	return idx
}

func (t *HoleTree) leftmost(idx nodeIdx) nodeIdx {
	for t.nodes[idx].Left != sentinelIdx {
		idx = t.nodes[idx].Left
	}
	return idx
}

func (t *HoleTree) replaceChild(parent, oldChild, newChild nodeIdx) {
	switch {
	case parent == sentinelIdx:
		t.root = newChild
	case t.nodes[parent].Left == oldChild:
		t.nodes[parent].Left = newChild
	case t.nodes[parent].Right == oldChild:
		t.nodes[parent].Right = newChild
	default:
		panic(fmt.Errorf("holetree: node %d is not a child of purported parent %d", oldChild, parent))
	}
}

// leftRotate and rightRotate are the standard red-black rotations,
// carrying along the Sum-maintenance deltas worked out for this
// augmentation: a left rotation only ever needs to correct the
// pivot's Sum, and a right rotation only the new top's.
//
//	        p                        p
//	        |                        |
//	      +---+                    +---+
//	      | x |                    | y |
//	      +---+                    +---+
//	     /     \         =>       /     \
//	    a    +---+              +---+    c
//	         | y |              | x |
//	         +---+              +---+
//	        /     \            /     \
//	       b       c          a       b
func (t *HoleTree) leftRotate(x nodeIdx) {
	p := t.nodes[x].Parent
	y := t.nodes[x].Right
	b := t.nodes[y].Left

	t.nodes[x].Sum -= t.nodes[y].Sum + t.nodes[y].width()

	t.nodes[y].Parent = p
	t.replaceChild(p, x, y)

	t.nodes[x].Parent = y
	t.nodes[y].Left = x

	t.nodes[x].Right = b
	if b != sentinelIdx {
		t.nodes[b].Parent = x
	}
}

func (t *HoleTree) rightRotate(y nodeIdx) {
	p := t.nodes[y].Parent
	x := t.nodes[y].Left
	b := t.nodes[x].Right

	t.nodes[x].Sum += t.nodes[y].Sum + t.nodes[y].width()

	t.nodes[x].Parent = p
	t.replaceChild(p, y, x)

	t.nodes[y].Parent = x
	t.nodes[x].Right = y

	t.nodes[y].Left = b
	if b != sentinelIdx {
		t.nodes[b].Parent = y
	}
}

// insertRebalance is the CLRS red-black insert fix-up, translated
// from parent pointers to arena indices with the shared sentinel
// standing in for nil.
func (t *HoleTree) insertRebalance(node nodeIdx) {
	for t.color(t.nodes[node].Parent) == Red {
		parent := t.nodes[node].Parent
		grandparent := t.nodes[parent].Parent
		if parent == t.nodes[grandparent].Left {
			uncle := t.nodes[grandparent].Right
			if t.color(uncle) == Red {
				t.nodes[parent].Color = Black
				t.nodes[uncle].Color = Black
				t.nodes[grandparent].Color = Red
				node = grandparent
				continue
			}
			if node == t.nodes[parent].Right {
				node = parent
				t.leftRotate(node)
				parent = t.nodes[node].Parent
				grandparent = t.nodes[parent].Parent
			}
			t.nodes[parent].Color = Black
			t.nodes[grandparent].Color = Red
			t.rightRotate(grandparent)
		} else {
			uncle := t.nodes[grandparent].Left
			if t.color(uncle) == Red {
				t.nodes[parent].Color = Black
				t.nodes[uncle].Color = Black
				t.nodes[grandparent].Color = Red
				node = grandparent
				continue
			}
			if node == t.nodes[parent].Left {
				node = parent
				t.rightRotate(node)
				parent = t.nodes[node].Parent
				grandparent = t.nodes[parent].Parent
			}
			t.nodes[parent].Color = Black
			t.nodes[grandparent].Color = Red
			t.leftRotate(grandparent)
		}
	}
	t.nodes[t.root].Color = Black
}

// deleteNode removes a node known to have at most one non-sentinel
// child -- the only shape mergeLeft and mergeRight ever ask to
// delete, since a predecessor has no right child and a successor has
// no left child.
func (t *HoleTree) deleteNode(z nodeIdx) {
	var child nodeIdx
	if t.nodes[z].Left != sentinelIdx {
		child = t.nodes[z].Left
	} else {
		child = t.nodes[z].Right
	}
	parent := t.nodes[z].Parent
	wasLeft := parent != sentinelIdx && t.nodes[parent].Left == z

	if child != sentinelIdx {
		t.nodes[child].Parent = parent
	}
	t.replaceChild(parent, z, child)

	if t.nodes[z].Color == Black {
		if t.color(child) == Red {
			t.nodes[child].Color = Black
		} else {
			t.deleteFixup(child, parent, wasLeft)
		}
	}
	t.release(z)
}

// deleteFixup is the canonical six-case red-black delete fix-up.
//
// Because child may be the shared sentinel, its side relative to
// parent cannot be recovered by comparing pointers once the splice
// above has already happened; wasLeft carries that bit in explicitly.
// Ascending past the first level, node is always a real, distinct
// node, so later iterations recover the side the ordinary way.
func (t *HoleTree) deleteFixup(node, parent nodeIdx, wasLeft bool) {
	for parent != sentinelIdx {
		var sibling nodeIdx
		if wasLeft {
			sibling = t.nodes[parent].Right
		} else {
			sibling = t.nodes[parent].Left
		}

		if t.color(sibling) == Red { // case 2
			t.nodes[parent].Color = Red
			t.nodes[sibling].Color = Black
			if wasLeft {
				t.leftRotate(parent)
				sibling = t.nodes[parent].Right
			} else {
				t.rightRotate(parent)
				sibling = t.nodes[parent].Left
			}
		}

		sl, sr := t.nodes[sibling].Left, t.nodes[sibling].Right
		if t.color(sl) == Black && t.color(sr) == Black {
			if t.color(parent) == Black { // case 3
				t.nodes[sibling].Color = Red
				node = parent
				parent = t.nodes[parent].Parent
				if parent != sentinelIdx {
					wasLeft = t.nodes[parent].Left == node
				}
				continue
			}
			// case 4
			t.nodes[sibling].Color = Red
			t.nodes[parent].Color = Black
			return
		}

		// case 5: the near nephew is red and the far one black;
		// rotate so the far nephew ends up red, then fall through
		// to case 6.
		if wasLeft && t.color(sr) == Black {
			t.nodes[sibling].Color = Red
			t.nodes[sl].Color = Black
			t.rightRotate(sibling)
			sibling = t.nodes[parent].Right
		} else if !wasLeft && t.color(sl) == Black {
			t.nodes[sibling].Color = Red
			t.nodes[sr].Color = Black
			t.leftRotate(sibling)
			sibling = t.nodes[parent].Left
		}

		// case 6
		sl, sr = t.nodes[sibling].Left, t.nodes[sibling].Right
		t.nodes[sibling].Color = t.nodes[parent].Color
		t.nodes[parent].Color = Black
		if wasLeft {
			t.nodes[sr].Color = Black
			t.leftRotate(parent)
		} else {
			t.nodes[sl].Color = Black
			t.rightRotate(parent)
		}
		return
	}
	t.nodes[node].Color = Black
}

// Validation below is for tests only; it is never consulted on the
// hot Distance path.

// ValidationError describes a single violated HoleTree invariant.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validate checks every invariant from the data model: root black, no
// red node with a red child, equal black-height on all root-to-leaf
// paths, pairwise-disjoint non-adjacent intervals in increasing key
// order, and Sum equal to the total width of each node's right
// subtree. It returns the first violation found, or nil.
func (t *HoleTree) Validate() error {
	if t.root == sentinelIdx {
		return nil
	}
	if t.color(t.root) != Black {
		return &ValidationError{"root is not black"}
	}
	var prevRight *uint64
	_, err := t.validateNode(t.root, &prevRight)
	return err
}

// validateNode returns the black-height of the subtree rooted at idx,
// and updates *prevRight (the RightKey of the most recently visited
// node in-order) as it goes, checking strictly-increasing,
// non-adjacent keys along the way.
func (t *HoleTree) validateNode(idx nodeIdx, prevRight **uint64) (blackHeight int, err error) {
	if idx == sentinelIdx {
		return 0, nil
	}
	n := t.nodes[idx]
	if n.LeftKey > n.RightKey {
		return 0, &ValidationError{fmt.Sprintf("node [%d,%d] has LeftKey > RightKey", n.LeftKey, n.RightKey)}
	}
	if n.Color == Red {
		if t.color(n.Left) == Red || t.color(n.Right) == Red {
			return 0, &ValidationError{fmt.Sprintf("red node [%d,%d] has a red child", n.LeftKey, n.RightKey)}
		}
	}

	lh, err := t.validateNode(n.Left, prevRight)
	if err != nil {
		return 0, err
	}

	if *prevRight != nil {
		if **prevRight >= n.LeftKey-1 {
			return 0, &ValidationError{fmt.Sprintf("interval [%d,%d] is adjacent to or overlaps the previous right key %d", n.LeftKey, n.RightKey, **prevRight)}
		}
	}
	right := n.RightKey
	*prevRight = &right

	rh, err := t.validateNode(n.Right, prevRight)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, &ValidationError{fmt.Sprintf("unequal black height around [%d,%d]: left=%d right=%d", n.LeftKey, n.RightKey, lh, rh)}
	}

	wantSum := t.totalWidth(n.Right)
	if wantSum != n.Sum {
		return 0, &ValidationError{fmt.Sprintf("node [%d,%d] has Sum=%d, want %d", n.LeftKey, n.RightKey, n.Sum, wantSum)}
	}

	height := lh
	if n.Color == Black {
		height++
	}
	return height, nil
}

// totalWidth independently recomputes (in O(size), unsuitable for the
// hot path) the total width of the subtree rooted at idx, for
// cross-checking Sum during validation.
func (t *HoleTree) totalWidth(idx nodeIdx) uint64 {
	if idx == sentinelIdx {
		return 0
	}
	n := t.nodes[idx]
	return n.width() + t.totalWidth(n.Left) + t.totalWidth(n.Right)
}
