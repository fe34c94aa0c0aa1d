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

// Package field tracks the parent/child structure of a multi-field
// document registry: a field like "body.title" can be declared as a
// child of "body", so a query against "body" can be expanded to cover
// its nested fields.
package field

import "fmt"

// ErrAlreadyExists is returned by Hierarchy.Add when the field was
// already declared.
var ErrAlreadyExists = fmt.Errorf("field: already declared")

// ErrUnknownParent is returned by Hierarchy.Add when parent has not
// been declared yet: fields must be added in top-down order.
var ErrUnknownParent = fmt.Errorf("field: parent not yet declared")

// Hierarchy is a forest of field names: every field is either a root
// or a child of a previously declared field. The zero value is ready
// to use.
type Hierarchy[T comparable] struct {
	children map[T][]T
	roots    []T
}

// Add declares field as a root field, or as a child of parent if
// parent is non-nil. Fields must be declared in an order where every
// parent precedes its children.
func (h *Hierarchy[T]) Add(field T, parent *T) error {
	if h.children == nil {
		h.children = make(map[T][]T)
	}
	if _, exists := h.children[field]; exists {
		return ErrAlreadyExists
	}
	if parent != nil {
		if _, ok := h.children[*parent]; !ok {
			return ErrUnknownParent
		}
	}
	h.children[field] = nil

	if parent == nil {
		h.roots = append(h.roots, field)
		return nil
	}
	h.children[*parent] = append(h.children[*parent], field)
	return nil
}

// Children returns the direct children declared under field, or false
// if field has not been declared.
func (h *Hierarchy[T]) Children(field T) ([]T, bool) {
	children, ok := h.children[field]
	return children, ok
}

// Roots returns every field declared with no parent.
func (h *Hierarchy[T]) Roots() []T {
	return h.roots
}
