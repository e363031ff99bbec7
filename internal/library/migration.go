package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/JaimeStill/promptvault/internal/metrics"
	"github.com/JaimeStill/promptvault/internal/prompts"
)

// MigrationState summarizes what a migration would do.
type MigrationState string

const (
	NothingToMigrate MigrationState = "nothing_to_migrate"
	AlreadyMigrated  MigrationState = "already_migrated"
	Pending          MigrationState = "pending"
	Completed        MigrationState = "completed"
)

// MigrationPlan lists the cached records absent from the remote store.
type MigrationPlan struct {
	State   MigrationState   `json:"state"`
	Local   int              `json:"local"`
	Remote  int              `json:"remote"`
	Pending []prompts.Prompt `json:"-"`
	Count   int              `json:"pending"`
}

// MigrationReport is the outcome of a migration run.
type MigrationReport struct {
	State     MigrationState `json:"state"`
	Attempted int            `json:"attempted"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Errors    []string       `json:"errors,omitempty"`
}

// PlanMigration compares the local cache with the remote store.
// An unreachable remote is an error: the difference cannot be computed.
func (l *Library) PlanMigration(ctx context.Context) (MigrationPlan, error) {
	local := l.cache.Load(ctx)
	if len(local) == 0 {
		return MigrationPlan{State: NothingToMigrate, Pending: []prompts.Prompt{}}, nil
	}

	var remote []prompts.Prompt
	err := l.remote(ctx, "fetch", func(ctx context.Context) error {
		var err error
		remote, err = l.store.FetchAll(ctx)
		return err
	})
	if err != nil {
		return MigrationPlan{}, fmt.Errorf("plan migration: %w", err)
	}

	remoteIDs := lo.SliceToMap(remote, func(p prompts.Prompt) (string, struct{}) {
		return p.ID, struct{}{}
	})
	pending := lo.Reject(local, func(p prompts.Prompt, _ int) bool {
		_, ok := remoteIDs[p.ID]
		return ok
	})

	plan := MigrationPlan{
		State:   Pending,
		Local:   len(local),
		Remote:  len(remote),
		Pending: pending,
		Count:   len(pending),
	}
	if len(pending) == 0 {
		plan.State = AlreadyMigrated
	}
	return plan, nil
}

// Migrate upserts every orphaned cached record to the remote store.
// confirm must equal the number of pending records. Each record is retried
// independently; a failure does not stop the batch. After the batch the
// library is reloaded from the remote store.
func (l *Library) Migrate(ctx context.Context, confirm int) (MigrationReport, error) {
	plan, err := l.PlanMigration(ctx)
	if err != nil {
		return MigrationReport{}, err
	}

	if plan.State != Pending {
		l.logger.Info("migration skipped", "state", plan.State)
		return MigrationReport{State: plan.State}, nil
	}

	if confirm != plan.Count {
		return MigrationReport{}, fmt.Errorf("%w: pending %d, confirmed %d", ErrConfirmationMismatch, plan.Count, confirm)
	}

	report := MigrationReport{State: Completed, Attempted: plan.Count}
	var failures *multierror.Error

	for _, p := range plan.Pending {
		if err := l.migrateOne(ctx, p); err != nil {
			report.Failed++
			failures = multierror.Append(failures, fmt.Errorf("%s (%s): %w", p.Title, p.ID, err))
			continue
		}
		report.Succeeded++
	}

	metrics.RecordMigration(report.Succeeded, report.Failed)

	if err := failures.ErrorOrNil(); err != nil {
		report.Errors = make([]string, 0, len(failures.Errors))
		for _, e := range failures.Errors {
			report.Errors = append(report.Errors, e.Error())
		}
		l.logger.Warn("migration finished with failures",
			"succeeded", report.Succeeded,
			"failed", report.Failed,
			"error", err,
		)
	} else {
		l.logger.Info("migration finished", "succeeded", report.Succeeded)
	}

	if err := <-l.Load(ctx); err != nil {
		l.logger.Warn("reload after migration failed", "error", err)
	}

	return report, nil
}

func (l *Library) migrateOne(ctx context.Context, p prompts.Prompt) error {
	return retry.Do(
		func() error {
			return l.remote(ctx, "upsert", func(ctx context.Context) error {
				return l.store.Upsert(ctx, p)
			})
		},
		retry.Context(ctx),
		retry.Attempts(uint(l.cfg.MigrationAttempts)),
		retry.Delay(l.cfg.MigrationDelayDuration()),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

// retryable excludes failures that repeat deterministically.
func retryable(err error) bool {
	return !errors.Is(err, prompts.ErrDuplicate) &&
		!errors.Is(err, prompts.ErrValidation) &&
		!errors.Is(err, prompts.ErrInvalidCategory)
}
