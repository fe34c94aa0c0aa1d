// Copyright (C) 2024 The go-perlin Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package query

import (
	"github.com/go-perlin/perlin/postings"
	"github.com/go-perlin/perlin/vocab"
)

// Node is one node of a query tree over terms of type T: an Atom, or
// an And/Or/InOrder composition of other Nodes.
type Node[T comparable] interface {
	build(store *postings.Store, v *vocab.Vocabulary[T]) (Iterator, error)
}

// Atom matches documents containing Term.
type Atom[T comparable] struct {
	Term T
}

func (a Atom[T]) build(store *postings.Store, v *vocab.Vocabulary[T]) (Iterator, error) {
	id, ok := v.Get(a.Term)
	if !ok {
		return emptyIterator{}, nil
	}
	return newLeaf(store, id, 0)
}

// And matches documents satisfying every Operand.
type And[T comparable] struct {
	Operands []Node[T]
}

func (a And[T]) build(store *postings.Store, v *vocab.Vocabulary[T]) (Iterator, error) {
	ops, err := buildAll(a.Operands, store, v)
	if err != nil {
		return nil, err
	}
	return newAnd(ops), nil
}

// Or matches documents satisfying at least one Operand.
type Or[T comparable] struct {
	Operands []Node[T]
}

func (o Or[T]) build(store *postings.Store, v *vocab.Vocabulary[T]) (Iterator, error) {
	ops, err := buildAll(o.Operands, store, v)
	if err != nil {
		return nil, err
	}
	return newOr(ops), nil
}

// InOrder matches documents where Terms occur consecutively, in the
// given order, at adjacent positions (a phrase match). Unlike And and
// Or, its operands are plain terms rather than arbitrary sub-trees:
// position alignment is only meaningful between leaves.
type InOrder[T comparable] struct {
	Terms []T
}

func (p InOrder[T]) build(store *postings.Store, v *vocab.Vocabulary[T]) (Iterator, error) {
	ops := make([]PositionalIterator, 0, len(p.Terms))
	for i, term := range p.Terms {
		id, ok := v.Get(term)
		if !ok {
			return emptyIterator{}, nil
		}
		it, err := newLeaf(store, id, i)
		if err != nil {
			return nil, err
		}
		ops = append(ops, it)
	}
	return newInOrder(ops), nil
}

func buildAll[T comparable](nodes []Node[T], store *postings.Store, v *vocab.Vocabulary[T]) ([]Iterator, error) {
	ops := make([]Iterator, 0, len(nodes))
	for _, n := range nodes {
		it, err := n.build(store, v)
		if err != nil {
			return nil, err
		}
		ops = append(ops, it)
	}
	return ops, nil
}

// Compile builds node into a composed Iterator over store's postings,
// resolving terms against v.
func Compile[T comparable](node Node[T], store *postings.Store, v *vocab.Vocabulary[T]) (Iterator, error) {
	return node.build(store, v)
}

// Cursor yields the DocIds matching a compiled query, one at a time.
type Cursor struct {
	it Iterator
}

// NewCursor wraps a compiled Iterator as a DocId cursor.
func NewCursor(it Iterator) *Cursor {
	return &Cursor{it: it}
}

// Next returns the next matching DocId, ascending and duplicate-free.
func (c *Cursor) Next() (postings.DocID, bool, error) {
	p, ok := c.it.Next()
	if !ok {
		return 0, false, c.it.Err()
	}
	return p.Doc, true, nil
}

// Execute drains a compiled Iterator into a slice of matching DocIds.
func Execute(it Iterator) ([]postings.DocID, error) {
	c := NewCursor(it)
	var out []postings.DocID
	for {
		doc, ok, err := c.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, doc)
	}
}
