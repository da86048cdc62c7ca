package services

import (
	"context"
	"database/sql"

	"budgeteer/internal/amqp"
	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

// GoalService manages savings and debt goals, their priority ranks, and the
// milestone notifications fired as contributions accumulate.
type GoalService struct {
	db       *sql.DB
	notifier *Notifier
}

func NewGoalService(db *sql.DB, notifier *Notifier) *GoalService {
	return &GoalService{db: db, notifier: notifier}
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	// Derive progress and status from whatever starting balance was given.
	g = core.ApplyContribution(g, core.Money{})
	return storage.NewGoalRepo(s.db).Create(ctx, g)
}

func (s *GoalService) Get(ctx context.Context, ownerID, id int64) (core.Goal, error) {
	return storage.NewGoalRepo(s.db).Get(ctx, id, ownerID)
}

// List returns the owner's goals, ranked ones first.
func (s *GoalService) List(ctx context.Context, ownerID int64) ([]core.Goal, error) {
	return storage.NewGoalRepo(s.db).List(ctx, ownerID)
}

// Update rewrites the goal's editable fields and recomputes progress. This is
// the one place a completed goal can revert, when the target is raised or the
// balance corrected downward.
func (s *GoalService) Update(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	g.Status = core.GoalActive
	g = core.ApplyContribution(g, core.Money{})
	if err := storage.NewGoalRepo(s.db).Update(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, s.checkMilestones(ctx, g)
}

// Rank assigns or clears a goal's priority position.
func (s *GoalService) Rank(ctx context.Context, ownerID, id int64, rank *int) (core.Goal, error) {
	repo := storage.NewGoalRepo(s.db)
	g, err := repo.Get(ctx, id, ownerID)
	if err != nil {
		return core.Goal{}, err
	}
	g.Rank = rank
	if err := repo.Update(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// Delete removes the goal and clears its milestone records.
func (s *GoalService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := storage.NewGoalRepo(s.db).Delete(ctx, id, ownerID); err != nil {
		return err
	}
	return storage.NewNotificationRepo(s.db).DeleteForSubject(ctx, ownerID, amqp.KindGoalMilestone, id)
}

// Contribute accumulates an amount into the goal and announces any milestone
// checkpoints the new progress reaches. A negative amount backs out a
// contribution; completed status never reverts this way.
func (s *GoalService) Contribute(ctx context.Context, ownerID, id int64, amount core.Money) (core.Goal, error) {
	repo := storage.NewGoalRepo(s.db)
	g, err := repo.Get(ctx, id, ownerID)
	if err != nil {
		return core.Goal{}, err
	}
	g = core.ApplyContribution(g, amount)
	if err := repo.Update(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, s.checkMilestones(ctx, g)
}

func (s *GoalService) checkMilestones(ctx context.Context, g core.Goal) error {
	for _, milestone := range core.Milestones(g.Progress, nil) {
		if _, err := s.notifier.GoalMilestone(ctx, g.OwnerID, g, milestone); err != nil {
			return err
		}
	}
	return nil
}
