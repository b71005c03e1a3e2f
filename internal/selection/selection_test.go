package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleCategory(t *testing.T) {
	state := CategorySelection{}

	state = ToggleCategory(state, "M")
	assert.Equal(t, []string{"M"}, state.Categories)

	state = ToggleDivision(state, "69")
	state = ToggleDivision(state, "70")
	assert.Equal(t, []string{"69", "70"}, state.Divisions)

	// Deselecting the category cascades to its divisions in one update.
	state = ToggleCategory(state, "M")
	assert.Empty(t, state.Categories)
	assert.Empty(t, state.Divisions)
}

func TestToggleCategory_CascadeKeepsOtherDivisions(t *testing.T) {
	state := CategorySelection{}
	state = ToggleCategory(state, "M")
	state = ToggleCategory(state, "G")
	state = ToggleDivision(state, "69")
	state = ToggleDivision(state, "46")

	state = ToggleCategory(state, "M")

	assert.Equal(t, []string{"G"}, state.Categories)
	assert.Equal(t, []string{"46"}, state.Divisions)
}

func TestToggleDivision_RequiresParentCategory(t *testing.T) {
	state := CategorySelection{}

	// Parent "F" not selected: toggle is a no-op, not an error.
	next := ToggleDivision(state, "41")
	assert.Empty(t, next.Divisions)

	state = ToggleCategory(state, "F")
	state = ToggleDivision(state, "41")
	assert.Equal(t, []string{"41"}, state.Divisions)

	// Toggling an already selected division removes it.
	state = ToggleDivision(state, "41")
	assert.Empty(t, state.Divisions)
}

func TestToggle_UnknownCodesIgnored(t *testing.T) {
	state := CategorySelection{Categories: []string{"G"}}
	assert.Equal(t, state, ToggleCategory(state, "ZZ"))
	assert.Equal(t, state, ToggleDivision(state, "99"))
}

func TestToggle_CascadeInvariantHolds(t *testing.T) {
	// Arbitrary toggle sequence; the invariant must hold after every step.
	state := CategorySelection{}
	ops := []struct {
		kind string
		code string
	}{
		{"cat", "M"}, {"div", "69"}, {"cat", "G"}, {"div", "46"},
		{"div", "47"}, {"cat", "M"}, {"div", "70"}, {"cat", "G"},
		{"cat", "F"}, {"div", "41"}, {"div", "41"}, {"cat", "F"},
	}

	for _, op := range ops {
		if op.kind == "cat" {
			state = ToggleCategory(state, op.code)
		} else {
			state = ToggleDivision(state, op.code)
		}
		require.NoError(t, Validate(state), "after toggling %s %s", op.kind, op.code)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   CategorySelection
		wantErr bool
	}{
		{name: "empty", state: CategorySelection{}},
		{name: "consistent", state: CategorySelection{Categories: []string{"M"}, Divisions: []string{"69"}}},
		{name: "orphan division", state: CategorySelection{Divisions: []string{"69"}}, wantErr: true},
		{name: "unknown category", state: CategorySelection{Categories: []string{"ZZ"}}, wantErr: true},
		{name: "unknown division", state: CategorySelection{Categories: []string{"M"}, Divisions: []string{"99"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.state)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSelection)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
