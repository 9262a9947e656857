package voronoi

import "github.com/0x0FACED/go-gvd/pkg/halfedge"

// candidate is a vertex waiting to be tested while the conflict zone grows.
type candidate struct {
	v halfedge.VertexID
	h float64
}

// Most negative h first; ties go to the older vertex.
func (c candidate) less(o candidate) bool {
	if c.h != o.h {
		return c.h < o.h
	}
	return c.v < o.v
}

// queue is a red-black tree of candidates kept in less order.
type queue struct {
	root *queueNode
	size int
}

type queueNode struct {
	value  candidate
	left   *queueNode
	right  *queueNode
	parent *queueNode
	red    bool
}

func (t *queue) len() int { return t.size }

func (t *queue) push(c candidate) {
	// last node ordered before c
	var prev *queueNode
	for n := t.root; n != nil; {
		if n.value.less(c) {
			prev = n
			n = n.right
		} else {
			n = n.left
		}
	}
	t.insertSuccessor(prev, c)
	t.size++
}

func (t *queue) pop() (candidate, bool) {
	if t.root == nil {
		return candidate{}, false
	}
	n := t.getFirst(t.root)
	t.removeNode(n)
	t.size--
	return n.value, true
}

// insertSuccessor places c right after node in order, or first when node is
// nil.
func (t *queue) insertSuccessor(node *queueNode, c candidate) {
	successor := &queueNode{value: c, red: true}

	var parent *queueNode
	switch {
	case node != nil && node.right != nil:
		node = t.getFirst(node.right)
		node.left = successor
		parent = node
	case node != nil:
		node.right = successor
		parent = node
	case t.root != nil:
		node = t.getFirst(t.root)
		node.left = successor
		parent = node
	default:
		t.root = successor
	}
	successor.parent = parent

	node = successor
	for parent != nil && parent.red {
		grandpa := parent.parent
		if parent == grandpa.left {
			uncle := grandpa.right
			if uncle != nil && uncle.red {
				parent.red = false
				uncle.red = false
				grandpa.red = true
				node = grandpa
			} else {
				if node == parent.right {
					t.rotateLeft(parent)
					node = parent
					parent = node.parent
				}
				parent.red = false
				grandpa.red = true
				t.rotateRight(grandpa)
			}
		} else {
			uncle := grandpa.left
			if uncle != nil && uncle.red {
				parent.red = false
				uncle.red = false
				grandpa.red = true
				node = grandpa
			} else {
				if node == parent.left {
					t.rotateRight(parent)
					node = parent
					parent = node.parent
				}
				parent.red = false
				grandpa.red = true
				t.rotateLeft(grandpa)
			}
		}
		parent = node.parent
	}
	t.root.red = false
}

func (t *queue) removeNode(node *queueNode) {
	parent := node.parent
	left := node.left
	right := node.right
	var next *queueNode
	switch {
	case left == nil:
		next = right
	case right == nil:
		next = left
	default:
		next = t.getFirst(right)
	}
	if parent != nil {
		if parent.left == node {
			parent.left = next
		} else {
			parent.right = next
		}
	} else {
		t.root = next
	}

	var isRed bool
	if left != nil && right != nil {
		isRed = next.red
		next.red = node.red
		next.left = left
		left.parent = next
		if next != right {
			parent = next.parent
			next.parent = node.parent
			node = next.right
			parent.left = node
			next.right = right
			right.parent = next
		} else {
			next.parent = parent
			parent = next
			node = next.right
		}
	} else {
		isRed = node.red
		node = next
	}
	if node != nil {
		node.parent = parent
	}
	if isRed {
		return
	}
	if node != nil && node.red {
		node.red = false
		return
	}

	var sibling *queueNode
	for node != t.root {
		if node == parent.left {
			sibling = parent.right
			if sibling.red {
				sibling.red = false
				parent.red = true
				t.rotateLeft(parent)
				sibling = parent.right
			}
			if isRedNode(sibling.left) || isRedNode(sibling.right) {
				if !isRedNode(sibling.right) {
					sibling.left.red = false
					sibling.red = true
					t.rotateRight(sibling)
					sibling = parent.right
				}
				sibling.red = parent.red
				parent.red = false
				sibling.right.red = false
				t.rotateLeft(parent)
				node = t.root
				break
			}
		} else {
			sibling = parent.left
			if sibling.red {
				sibling.red = false
				parent.red = true
				t.rotateRight(parent)
				sibling = parent.left
			}
			if isRedNode(sibling.left) || isRedNode(sibling.right) {
				if !isRedNode(sibling.left) {
					sibling.right.red = false
					sibling.red = true
					t.rotateLeft(sibling)
					sibling = parent.left
				}
				sibling.red = parent.red
				parent.red = false
				sibling.left.red = false
				t.rotateRight(parent)
				node = t.root
				break
			}
		}
		sibling.red = true
		node = parent
		parent = parent.parent
		if node.red {
			break
		}
	}
	if node != nil {
		node.red = false
	}
}

func isRedNode(n *queueNode) bool { return n != nil && n.red }

func (t *queue) rotateLeft(p *queueNode) {
	q := p.right
	parent := p.parent
	if parent != nil {
		if parent.left == p {
			parent.left = q
		} else {
			parent.right = q
		}
	} else {
		t.root = q
	}
	q.parent = parent
	p.parent = q
	p.right = q.left
	if p.right != nil {
		p.right.parent = p
	}
	q.left = p
}

func (t *queue) rotateRight(p *queueNode) {
	q := p.left
	parent := p.parent
	if parent != nil {
		if parent.left == p {
			parent.left = q
		} else {
			parent.right = q
		}
	} else {
		t.root = q
	}
	q.parent = parent
	p.parent = q
	p.left = q.right
	if p.left != nil {
		p.left.parent = p
	}
	q.right = p
}

func (t *queue) getFirst(node *queueNode) *queueNode {
	for node.left != nil {
		node = node.left
	}
	return node
}
