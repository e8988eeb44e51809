package service

import (
	"context"

	"go.uber.org/zap"
)

// Admin holds operator maintenance jobs.
type Admin struct {
	env
	st       Stores
	notifier *Notifier
}

// PurgeReport counts what a purge removed, or would remove on a dry run.
type PurgeReport struct {
	Fridges    int   `json:"fridges"`
	Items      int64 `json:"items"`
	Categories int64 `json:"categories"`
	Invites    int64 `json:"invites"`
	DryRun     bool  `json:"dry_run"`
}

// PurgeSharedFridges deletes every fridge no profile points at, together
// with its items, categories and invites. Personal fridges survive: they
// are anchored by their owner's profile or still owned alone by the user
// they were created for.
func (a *Admin) PurgeSharedFridges(ctx context.Context, dryRun bool) (*PurgeReport, error) {
	profiles, err := a.st.Profiles.List(ctx)
	if err != nil {
		return nil, internal("list profiles", err)
	}
	anchored := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		anchored[p.FridgeID] = true
	}
	fridges, err := a.st.Fridges.List(ctx)
	if err != nil {
		return nil, internal("list fridges", err)
	}

	rep := &PurgeReport{DryRun: dryRun}
	for _, f := range fridges {
		if anchored[f.ID] || f.OwnedAlone() {
			continue
		}
		rep.Fridges++
		if dryRun {
			a.log.Info("would purge fridge", zap.String("fridge_id", f.ID), zap.String("name", f.Name))
			continue
		}
		n, err := a.st.Items.DeleteByFridge(ctx, f.ID)
		if err != nil {
			return rep, internal("purge items", err)
		}
		rep.Items += n
		if n, err = a.st.Categories.DeleteByFridge(ctx, f.ID); err != nil {
			return rep, internal("purge categories", err)
		}
		rep.Categories += n
		if n, err = a.st.Invites.DeleteByFridge(ctx, f.ID); err != nil {
			return rep, internal("purge invites", err)
		}
		rep.Invites += n
		if err := a.st.Fridges.Delete(ctx, f.ID); err != nil && !isNotFound(err) {
			return rep, internal("purge fridge", err)
		}
		a.log.Info("purged fridge", zap.String("fridge_id", f.ID), zap.String("name", f.Name))
	}
	return rep, nil
}

// PurgeExpiredInvites deletes invites whose expiry is older than the
// configured retention.
func (a *Admin) PurgeExpiredInvites(ctx context.Context) (int64, error) {
	cutoff := a.now().Add(-a.cfg.InviteRetention)
	n, err := a.st.Invites.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, internal("purge invites", err)
	}
	if n > 0 {
		a.log.Info("purged expired invites", zap.Int64("count", n))
	}
	return n, nil
}

// CheckExpiring runs the idempotent expiring-item check.
func (a *Admin) CheckExpiring(ctx context.Context) (int, error) {
	return a.notifier.CheckExpiringItems(ctx)
}
