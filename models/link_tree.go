// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned by [LinkTree.Validate] when two siblings share
// the same id.
var ErrDuplicateID = errors.New("duplicate id among siblings")

// ErrEmptyID is returned by [LinkTree.Validate] when a node has no id.
var ErrEmptyID = errors.New("empty id")

// LinkItem is a single bookmark tile.
type LinkItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// SubCategory groups link items inside a category.
type SubCategory struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Items []LinkItem `json:"items"`
}

// Category is a top-level group of the dashboard.
type Category struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	SubCategories []SubCategory `json:"subCategories"`
}

// LinkTree is the ordered list of categories. Ownership is strictly
// hierarchical; ids are unique among siblings only.
type LinkTree []Category

// Validate checks that every node has an id and that ids are unique within
// each parent's list.
func (t LinkTree) Validate() error {
	seenCat := make(map[string]struct{}, len(t))
	for _, c := range t {
		if c.ID == "" {
			return fmt.Errorf("category %q: %w", c.Title, ErrEmptyID)
		}
		if _, ok := seenCat[c.ID]; ok {
			return fmt.Errorf("category %q: %w", c.ID, ErrDuplicateID)
		}
		seenCat[c.ID] = struct{}{}

		seenSub := make(map[string]struct{}, len(c.SubCategories))
		for _, s := range c.SubCategories {
			if s.ID == "" {
				return fmt.Errorf("sub-category %q in %q: %w", s.Title, c.ID, ErrEmptyID)
			}
			if _, ok := seenSub[s.ID]; ok {
				return fmt.Errorf("sub-category %q in %q: %w", s.ID, c.ID, ErrDuplicateID)
			}
			seenSub[s.ID] = struct{}{}

			seenItem := make(map[string]struct{}, len(s.Items))
			for _, it := range s.Items {
				if it.ID == "" {
					return fmt.Errorf("link %q in %q/%q: %w", it.Title, c.ID, s.ID, ErrEmptyID)
				}
				if _, ok := seenItem[it.ID]; ok {
					return fmt.Errorf("link %q in %q/%q: %w", it.ID, c.ID, s.ID, ErrDuplicateID)
				}
				seenItem[it.ID] = struct{}{}
			}
		}
	}
	return nil
}

// CountLinks returns the total number of link items in the tree.
func (t LinkTree) CountLinks() int {
	n := 0
	for _, c := range t {
		for _, s := range c.SubCategories {
			n += len(s.Items)
		}
	}
	return n
}
