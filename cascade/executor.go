package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"menufic/apperr"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrTargetGone is returned when the root row disappeared between
// collection and commit.
var ErrTargetGone = errors.New("cascade: target row no longer exists")

// BlobDeleter removes stored files by id.
type BlobDeleter interface {
	BulkDelete(ctx context.Context, fileIDs []string) error
}

// BestEffort is the outcome of the storage cleanup. Its error never fails
// the delete.
type BestEffort struct {
	Attempted bool
	FileIDs   []string
	Err       error
}

func (b BestEffort) OK() bool { return b.Err == nil }

type Outcome struct {
	Plan    Plan
	Trace   []State
	Storage BestEffort
}

func (o Outcome) State() State {
	if len(o.Trace) == 0 {
		return StateRequested
	}
	return o.Trace[len(o.Trace)-1]
}

// Request identifies the entity to delete.
type Request struct {
	Kind    Kind
	ID      string
	OwnerID string
}

// CollectFunc loads the target and its descendants for the owner and turns
// them into a plan. It returns an apperr NotFound error when the target is
// missing or owned by someone else.
type CollectFunc func(ctx context.Context, req Request) (Plan, error)

type Executor struct {
	db     *gorm.DB
	blobs  BlobDeleter
	logger *slog.Logger
}

func NewExecutor(db *gorm.DB, blobs BlobDeleter, logger *slog.Logger) *Executor {
	return &Executor{db: db, blobs: blobs, logger: logger.With("component", "cascade")}
}

// Run drives one delete through its lifecycle. The returned error is nil
// exactly when the database transaction committed.
func (e *Executor) Run(ctx context.Context, req Request, collect CollectFunc) (Outcome, error) {
	tr := NewTracker()
	log := e.logger.With("kind", req.Kind, "id", req.ID, "user_id", req.OwnerID)

	fail := func(state State, err error) (Outcome, error) {
		_ = tr.To(state)
		return Outcome{Trace: tr.Trace()}, err
	}

	_ = tr.To(StateValidating)
	if req.ID == "" || req.OwnerID == "" {
		return fail(StateRejected, apperr.Validation("%s id is required", req.Kind))
	}

	_ = tr.To(StateCollecting)
	log.DebugContext(ctx, "collecting delete tree")
	plan, err := collect(ctx, req)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			log.WarnContext(ctx, "delete target not found")
			return fail(StateRejected, err)
		}
		log.ErrorContext(ctx, "failed to collect delete tree", "error", err)
		return fail(StateFailed, err)
	}

	_ = tr.To(StateTransactionBuilding)
	if err := validatePlan(plan, req); err != nil {
		log.ErrorContext(ctx, "invalid delete plan", "error", err)
		return fail(StateFailed, apperr.Internal("Failed to plan delete", err))
	}

	_ = tr.To(StateCommitting)
	storage, err := e.Execute(ctx, plan)
	if err != nil {
		_ = tr.To(StateFailed)
		return Outcome{Plan: plan, Trace: tr.Trace(), Storage: storage}, err
	}
	_ = tr.To(StateCommitted)
	log.InfoContext(ctx, "delete committed", "ops", len(plan.Ops), "images", len(plan.ImageIDs))
	return Outcome{Plan: plan, Trace: tr.Trace(), Storage: storage}, nil
}

// Execute runs the plan's transaction and the storage cleanup
// concurrently and waits for both. Only the transaction decides the
// returned error.
func (e *Executor) Execute(ctx context.Context, plan Plan) (BestEffort, error) {
	storage := BestEffort{FileIDs: plan.ImageIDs}
	var g errgroup.Group

	g.Go(func() error {
		return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, op := range plan.Ops {
				if err := apply(tx, op); err != nil {
					return err
				}
			}
			return nil
		})
	})

	if len(plan.ImageIDs) > 0 {
		storage.Attempted = true
		g.Go(func() error {
			storage.Err = e.blobs.BulkDelete(ctx, plan.ImageIDs)
			return nil
		})
	}

	err := g.Wait()
	if storage.Err != nil {
		e.logger.WarnContext(ctx, "storage cleanup failed, blobs may be orphaned",
			"kind", plan.Kind, "id", plan.TargetID, "file_ids", plan.ImageIDs, "error", storage.Err)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "delete transaction failed", "kind", plan.Kind, "id", plan.TargetID, "error", err)
		if errors.Is(err, ErrTargetGone) {
			return storage, apperr.NotFound(displayName(plan.Kind))
		}
		return storage, apperr.Internal(fmt.Sprintf("Failed to delete %s", plan.Kind), err)
	}
	return storage, nil
}

func apply(tx *gorm.DB, op Op) error {
	if op.Empty() {
		return nil
	}
	q := tx.Where(op.Column+" IN ?", op.IDs)
	if op.OwnerID != "" {
		q = q.Where("user_id = ?", op.OwnerID)
	}
	res := q.Delete(op.model)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if op.Required && res.RowsAffected == 0 {
		return ErrTargetGone
	}
	return nil
}

func validatePlan(plan Plan, req Request) error {
	if plan.TargetID != req.ID || plan.OwnerID != req.OwnerID {
		return fmt.Errorf("plan targets %s/%s, request was %s/%s", plan.OwnerID, plan.TargetID, req.OwnerID, req.ID)
	}
	if len(plan.Ops) == 0 {
		return errors.New("plan has no operations")
	}
	last := plan.Ops[len(plan.Ops)-1]
	if last.Kind != OpDeleteImages {
		return errors.New("image rows must be deleted last")
	}
	return nil
}

func displayName(k Kind) string {
	switch k {
	case KindRestaurant:
		return "Restaurant"
	case KindMenu:
		return "Menu"
	case KindCategory:
		return "Category"
	case KindMenuItem:
		return "Menu item"
	}
	return string(k)
}
