package service

import (
	"context"
	"time"

	"docudrive-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// OwnerLister enumerates every user that owns at least one folder.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]uuid.UUID, error)
}

// Reconciler periodically recomputes every stored path from the parent
// chain and repairs drift left behind by tolerated propagation failures.
type Reconciler struct {
	vfs    *VFSService
	owners OwnerLister
	cron   *cron.Cron
	log    *logrus.Logger
}

// NewReconciler creates a path reconciler
func NewReconciler(vfs *VFSService, owners OwnerLister, log *logrus.Logger) *Reconciler {
	return &Reconciler{
		vfs:    vfs,
		owners: owners,
		log:    log,
	}
}

// Start schedules reconciliation runs with the given cron expression
func (r *Reconciler) Start(schedule string) error {
	r.cron = cron.New()
	_, err := r.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			r.log.WithError(err).Warn("path reconciliation run failed")
		}
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	r.log.WithField("schedule", schedule).Info("path reconciler started")
	return nil
}

// Stop halts the schedule; a running reconciliation finishes first
func (r *Reconciler) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// RunOnce reconciles paths for every owner
func (r *Reconciler) RunOnce(ctx context.Context) error {
	owners, err := r.owners.ListOwners(ctx)
	if err != nil {
		return err
	}
	for _, owner := range owners {
		repaired, err := r.vfs.ReconcilePaths(ctx, owner)
		if err != nil {
			r.log.WithField("owner", owner).WithError(err).Warn("reconciliation failed for owner")
			continue
		}
		if repaired > 0 {
			r.log.WithFields(logrus.Fields{
				"owner":    owner,
				"repaired": repaired,
			}).Info("repaired drifted paths")
		}
	}
	return nil
}

// ReconcilePaths recomputes each of the owner's folder and file paths from
// the parent chain and rewrites any that drifted. Returns the number of
// repaired rows.
func (s *VFSService) ReconcilePaths(ctx context.Context, ownerID uuid.UUID) (int, error) {
	folders, err := s.folders.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	byID := make(map[uuid.UUID]*models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	expected := make(map[uuid.UUID]string, len(folders))
	var computePath func(f *models.Folder) string
	computePath = func(f *models.Folder) string {
		if p, ok := expected[f.ID]; ok {
			return p
		}
		var p string
		if f.ParentID == nil {
			p = "/" + f.Name
		} else if parent, ok := byID[*f.ParentID]; ok {
			p = computePath(parent) + "/" + f.Name
		} else {
			// Orphaned parent pointer; leave the stored path alone.
			p = f.Path
		}
		expected[f.ID] = p
		return p
	}

	repaired := 0
	for _, f := range folders {
		want := computePath(f)
		if f.Path != want {
			f.Path = want
			if err := s.folders.Update(ctx, f); err != nil {
				return repaired, err
			}
			repaired++
		}
	}

	files, err := s.files.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return repaired, err
	}
	for _, file := range files {
		folder, ok := byID[file.FolderID]
		if !ok {
			continue
		}
		want := expected[folder.ID] + "/" + file.Name
		if file.Path != want {
			file.Path = want
			if err := s.files.Update(ctx, file); err != nil {
				return repaired, err
			}
			repaired++
		}
	}

	return repaired, nil
}
