// Package selection enforces the KBLI category/division cascade: a division
// may only be selected while its parent category is selected.
package selection

import (
	"errors"
	"fmt"

	"tax-classifier-backend/internal/taxonomy"
)

// ErrInvalidSelection is returned when a selection violates the cascade
// invariant or references unknown codes.
var ErrInvalidSelection = errors.New("invalid selection")

// CategorySelection is the chosen set of KBLI categories and divisions.
type CategorySelection struct {
	Categories []string `json:"selected_categories"`
	Divisions  []string `json:"selected_divisions"`
}

func contains(list []string, code string) bool {
	for _, c := range list {
		if c == code {
			return true
		}
	}
	return false
}

func remove(list []string, code string) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}

// ToggleCategory flips a category in or out of the selection. Deselecting a
// category removes its divisions in the same update, so callers never observe
// a division without its parent.
func ToggleCategory(state CategorySelection, code string) CategorySelection {
	cat, ok := taxonomy.FindCategory(code)
	if !ok {
		return state
	}

	if contains(state.Categories, code) {
		next := CategorySelection{
			Categories: remove(state.Categories, code),
			Divisions:  state.Divisions,
		}
		for _, d := range cat.Divisions {
			next.Divisions = remove(next.Divisions, d.Code)
		}
		return next
	}

	return CategorySelection{
		Categories: append(append([]string{}, state.Categories...), code),
		Divisions:  append([]string{}, state.Divisions...),
	}
}

// ToggleDivision flips a division in or out of the selection. Selecting a
// division whose parent category is not selected is a no-op, not an error.
func ToggleDivision(state CategorySelection, code string) CategorySelection {
	parent, ok := taxonomy.ParentCategory(code)
	if !ok {
		return state
	}

	if contains(state.Divisions, code) {
		return CategorySelection{
			Categories: append([]string{}, state.Categories...),
			Divisions:  remove(state.Divisions, code),
		}
	}

	if !contains(state.Categories, parent) {
		return state
	}

	return CategorySelection{
		Categories: append([]string{}, state.Categories...),
		Divisions:  append(append([]string{}, state.Divisions...), code),
	}
}

// Validate checks the cascade invariant on an externally supplied selection.
// Used at job submission so an invalid selection is rejected before any
// processing starts.
func Validate(state CategorySelection) error {
	for _, c := range state.Categories {
		if _, ok := taxonomy.FindCategory(c); !ok {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidSelection, c)
		}
	}
	for _, d := range state.Divisions {
		parent, ok := taxonomy.ParentCategory(d)
		if !ok {
			return fmt.Errorf("%w: unknown division %q", ErrInvalidSelection, d)
		}
		if !contains(state.Categories, parent) {
			return fmt.Errorf("%w: division %q selected without category %q", ErrInvalidSelection, d, parent)
		}
	}
	return nil
}
