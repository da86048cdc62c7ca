package core

import "sort"

// DefaultMilestones are the progress checkpoints announced for goals.
var DefaultMilestones = []int{25, 50, 75, 100}

// ApplyContribution accumulates an amount into a goal and recomputes the
// derived progress and status. Progress is clamped to [0, 100]. A goal that
// has reached completed status never reverts automatically; corrections must
// go through an explicit goal update.
func ApplyContribution(g Goal, amount Money) Goal {
	g.Current.Cents += amount.Cents

	g.Progress = 0
	if g.Target.Cents > 0 {
		g.Progress = float64(g.Current.Cents) / float64(g.Target.Cents) * 100
	}
	if g.Progress < 0 {
		g.Progress = 0
	}
	if g.Progress > 100 {
		g.Progress = 100
	}

	if g.Progress >= 100 || g.Status == GoalCompleted {
		g.Status = GoalCompleted
	} else {
		g.Status = GoalActive
	}
	return g
}

// Milestones returns every checkpoint at or below the given progress, in
// ascending order. Like EvaluateAlerts, it carries no memory of what has
// already fired; callers track that.
func Milestones(progress float64, checkpoints []int) []int {
	if len(checkpoints) == 0 {
		checkpoints = DefaultMilestones
	}
	sorted := make([]int, len(checkpoints))
	copy(sorted, checkpoints)
	sort.Ints(sorted)

	var reached []int
	for _, checkpoint := range sorted {
		if progress >= float64(checkpoint) {
			reached = append(reached, checkpoint)
		}
	}
	return reached
}
