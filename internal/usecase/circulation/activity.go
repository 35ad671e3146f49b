package circulation

import (
	"context"
	"fmt"
	"sort"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/remote"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type activityResult struct {
	idx          int
	collectionID uuid.UUID
	items        []domcirc.ActivityItem
	err          error
}

// PatronActivity asks every provider serving the patron's library for the
// patron's loans and holds, at most FanoutLimit at a time. A failing
// provider marks the result incomplete instead of failing the call.
func (e *engine) PatronActivity(ctx context.Context, patron *domcirc.Patron, pin string) (*Activity, error) {
	providers := e.registry.ForLibrary(patron.LibraryID())

	results := make(chan activityResult, len(providers))
	var g errgroup.Group
	g.SetLimit(e.cfg.FanoutLimit)
	for i, p := range providers {
		g.Go(func() error {
			results <- e.askProvider(ctx, i, p, patron, pin)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	ordered := make([]activityResult, 0, len(providers))
	for r := range results {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].idx < ordered[j].idx })

	activity := &Activity{Complete: true}
	for _, r := range ordered {
		if r.err != nil {
			activity.Complete = false
			e.logger.Warn("patron activity failed",
				"collection_id", r.collectionID.String(),
				"patron_id", patron.ID().String(),
				"error", r.err.Error())
			continue
		}
		for _, item := range r.items {
			switch it := item.(type) {
			case nil:
				continue
			case *domcirc.LoanInfo:
				if it == nil {
					continue
				}
				activity.Loans = append(activity.Loans, it)
			case *domcirc.HoldInfo:
				if it == nil {
					continue
				}
				activity.Holds = append(activity.Holds, it)
			default:
				e.logger.Warn("discarding unknown activity item",
					"collection_id", r.collectionID.String(),
					"type", fmt.Sprintf("%T", item))
			}
		}
	}
	return activity, nil
}

func (e *engine) askProvider(ctx context.Context, idx int, p remote.Provider, patron *domcirc.Patron, pin string) (res activityResult) {
	res = activityResult{idx: idx, collectionID: p.CollectionID()}
	defer func() {
		if r := recover(); r != nil {
			res.items = nil
			res.err = errs.Newf("provider panicked: %v", r)
		}
	}()

	if e.cfg.VendorTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.VendorTimeout)
		defer cancel()
	}
	res.items, res.err = p.PatronActivity(ctx, patron, pin)
	return res
}
