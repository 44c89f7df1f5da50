package catalog

import (
	"strings"
	"testing"
)

func TestValidate_AcceptsEmptyCatalog(t *testing.T) {
	if err := Validate(nil); err != nil {
		t.Fatalf("empty catalog should validate, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{
			name: "cycle",
			items: []Item{
				{ID: "a", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"b"}},
				{ID: "b", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"a"}},
			},
			want: "cycle",
		},
		{
			name: "dangling prerequisite",
			items: []Item{
				{ID: "a", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"nonexistent"}},
			},
			want: "nonexistent",
		},
		{
			name: "duplicate id",
			items: []Item{
				{ID: "a", Subject: "s", Difficulty: DifficultyBeginner},
				{ID: "a", Subject: "s", Difficulty: DifficultyBeginner},
			},
			want: "duplicate",
		},
		{
			name: "self prerequisite",
			items: []Item{
				{ID: "a", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"a"}},
			},
			want: "itself",
		},
		{
			name: "negative minutes",
			items: []Item{
				{ID: "a", Subject: "s", Difficulty: DifficultyBeginner, EstimatedMinutes: -5},
			},
			want: "EstimatedMinutes",
		},
		{
			name: "unknown difficulty",
			items: []Item{
				{ID: "a", Subject: "s", Difficulty: "expert"},
			},
			want: "want one of [beginner intermediate advanced]",
		},
		{
			name: "missing subject",
			items: []Item{
				{ID: "a", Difficulty: DifficultyBeginner},
			},
			want: "no subject",
		},
		{
			name: "empty id",
			items: []Item{
				{ID: " ", Subject: "s", Difficulty: DifficultyBeginner},
			},
			want: "empty ID",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.items)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_DanglingIsNotReportedAsCycle(t *testing.T) {
	items := []Item{
		{ID: "a", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"ghost"}},
		{ID: "b", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"a"}},
	}
	err := Validate(items)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "cycle") {
		t.Errorf("dangling prerequisite misreported as cycle: %v", err)
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	_, err := New([]Item{
		{ID: "a", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"b"}},
		{ID: "b", Subject: "s", Difficulty: DifficultyBeginner, Prerequisites: []string{"a"}},
	})
	if err == nil {
		t.Fatal("expected New to reject a cyclic catalog")
	}
}
