package decomposer

import (
	"context"
	"errors"
	"testing"

	"missiond/internal/llm"
	"missiond/internal/mission"
)

type fakeGen struct {
	response string
	err      error
}

func (f *fakeGen) Generate(_ context.Context, _ string, _ llm.GenerateOptions) (string, error) {
	return f.response, f.err
}

func (f *fakeGen) GenerateJSON(_ context.Context, _ string, _ llm.GenerateOptions) (string, error) {
	return f.response, f.err
}

func newMission(goal string) *mission.Mission {
	return &mission.Mission{ID: "m1", Goal: goal, Status: mission.StatusPending}
}

func TestDecompose(t *testing.T) {
	testCases := []struct {
		name        string
		goal        string
		response    string
		genErr      error
		expect      []string
		expectError bool
	}{
		{
			name:     "Well-formed array",
			goal:     "Understand AI impact on healthcare",
			response: `[{"description": "Research recent studies on AI in healthcare"}, {"description": "Summarize the findings"}]`,
			expect:   []string{"Research recent studies on AI in healthcare", "Summarize the findings"},
		},
		{
			name:     "Empty array is a valid outcome",
			goal:     "Nothing to do",
			response: `[]`,
			expect:   []string{},
		},
		{
			name:     "Blank descriptions are dropped",
			goal:     "Sparse plan",
			response: `[{"description": "  "}, {"description": "Do the real work and report back"}]`,
			expect:   []string{"Do the real work and report back"},
		},
		{
			name:        "Generative error",
			goal:        "Any goal",
			genErr:      errors.New("backend unavailable"),
			expectError: true,
		},
		{
			name:        "Non-JSON response",
			goal:        "Any goal",
			response:    "Sure! Here is your plan: step one...",
			expectError: true,
		},
		{
			name:        "JSON but not an array",
			goal:        "Any goal",
			response:    `{"description": "a single object"}`,
			expectError: true,
		},
		{
			name:        "JSON null is not an array",
			goal:        "Any goal",
			response:    `null`,
			expectError: true,
		},
		{
			name:        "Padded JSON null is not an array",
			goal:        "Any goal",
			response:    "\n  null  \n",
			expectError: true,
		},
		{
			name:        "Empty goal",
			goal:        "   ",
			response:    `[]`,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := New(&fakeGen{response: tc.response, err: tc.genErr}, nil)
			got, err := d.Decompose(context.Background(), newMission(tc.goal))

			if tc.expectError {
				if err == nil {
					t.Fatalf("expected a decomposition failure, got %v", got)
				}
				if !errors.Is(err, ErrDecomposition) {
					t.Errorf("error %v should wrap ErrDecomposition", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.expect) {
				t.Fatalf("got %d descriptions, want %d: %v", len(got), len(tc.expect), got)
			}
			for i := range got {
				if got[i] != tc.expect[i] {
					t.Errorf("description %d = %q, want %q", i, got[i], tc.expect[i])
				}
				if got[i] == "" {
					t.Errorf("decomposer must never emit an empty description")
				}
			}
		})
	}
}

func TestDecomposeRejectsAlreadyDecomposedMission(t *testing.T) {
	m := newMission("A goal")
	m.Tasks = []*mission.Task{{ID: "t1", Description: "existing"}}

	d := New(&fakeGen{response: `[]`}, nil)
	if _, err := d.Decompose(context.Background(), m); !errors.Is(err, ErrDecomposition) {
		t.Fatalf("expected ErrDecomposition for a mission with tasks, got %v", err)
	}
}
