package core

import "testing"

func TestApplyContribution(t *testing.T) {
	goal := Goal{
		ID:     1,
		Name:   "Emergency fund",
		Kind:   KindSavings,
		Target: Money{Cents: 100000},
		Status: GoalActive,
	}

	g := ApplyContribution(goal, Money{Cents: 40000})
	if g.Current.Cents != 40000 {
		t.Fatalf("current = %d, want 40000", g.Current.Cents)
	}
	if g.Progress != 40 {
		t.Fatalf("progress = %v, want 40", g.Progress)
	}
	if g.Status != GoalActive {
		t.Fatalf("status = %v, want active", g.Status)
	}

	g = ApplyContribution(g, Money{Cents: 70000})
	if g.Current.Cents != 110000 {
		t.Fatalf("current = %d, want 110000", g.Current.Cents)
	}
	if g.Progress != 100 {
		t.Fatalf("progress clamped = %v, want 100", g.Progress)
	}
	if g.Status != GoalCompleted {
		t.Fatalf("status = %v, want completed", g.Status)
	}
}

func TestApplyContributionCompletedIsSticky(t *testing.T) {
	goal := Goal{
		Target:  Money{Cents: 100000},
		Current: Money{Cents: 100000},
		Status:  GoalCompleted,
	}

	g := ApplyContribution(goal, Money{Cents: -50000})
	if g.Progress != 50 {
		t.Fatalf("progress = %v, want 50", g.Progress)
	}
	if g.Status != GoalCompleted {
		t.Fatalf("status = %v, completed must not auto-revert", g.Status)
	}
}

func TestApplyContributionZeroTarget(t *testing.T) {
	g := ApplyContribution(Goal{Status: GoalActive}, Money{Cents: 500})
	if g.Progress != 0 {
		t.Fatalf("progress = %v, want 0 for zero target", g.Progress)
	}
	if g.Status != GoalActive {
		t.Fatalf("status = %v, want active", g.Status)
	}
}

func TestMilestones(t *testing.T) {
	cases := []struct {
		name        string
		progress    float64
		checkpoints []int
		want        []int
	}{
		{name: "none reached", progress: 10, want: nil},
		{name: "first checkpoint", progress: 25, want: []int{25}},
		{name: "mid progress", progress: 60, want: []int{25, 50}},
		{name: "complete", progress: 100, want: []int{25, 50, 75, 100}},
		{name: "custom checkpoints sorted", progress: 40, checkpoints: []int{30, 10}, want: []int{10, 30}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Milestones(tc.progress, tc.checkpoints)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
