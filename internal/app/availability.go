package app

import (
	"context"
	"time"

	"github.com/rentwise/rental-api/internal/domain"
)

// Overlaps reports whether the date ranges [aStart, aEnd] and
// [bStart, bEnd] intersect. Both ends are inclusive: a shared boundary
// instant counts as a conflict. Every conflict query in the system uses
// this definition.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Availability is the outcome of resolving an item's conflict set.
type Availability struct {
	Status           domain.ItemStatus
	UnavailableUntil *time.Time
}

// ResolveAvailability reduces a conflict set to a status.
//
// A confirmed conflict wins outright and blocks until its return date;
// when several are confirmed, whichever the store returned first is
// used. A fully saturated set of the three approved hold tiers blocks
// with no end date. Anything else, including any number of pending
// hold requests, leaves the range available: requests are advisory
// until approved.
func ResolveAvailability(conflicts []domain.OrderItem) Availability {
	if len(conflicts) == 0 {
		return Availability{Status: domain.StatusAvailable}
	}

	for _, item := range conflicts {
		if item.Status == domain.StatusConfirmed {
			until := item.ReturnAt
			return Availability{Status: domain.StatusUnavailableUntil, UnavailableUntil: &until}
		}
	}

	seen := make(map[domain.ItemStatus]bool, len(conflicts))
	for _, item := range conflicts {
		seen[item.Status] = true
	}
	if seen[domain.StatusOnHold] && seen[domain.StatusSecondHold] && seen[domain.StatusThirdHold] {
		return Availability{Status: domain.StatusUnavailable}
	}

	return Availability{Status: domain.StatusAvailable}
}

// NextHoldTier computes the waitlist tier a new hold request would
// occupy given the current conflict set. The tier depends only on the
// total contention count: every approved hold or pending request
// occupies one slot, and the fourth contender is out of luck.
func NextHoldTier(conflicts []domain.OrderItem) domain.ItemStatus {
	activity := 0
	for _, item := range conflicts {
		if item.Status.IsHold() || item.Status.IsHoldRequest() {
			activity++
		}
	}

	switch activity {
	case 0:
		return domain.StatusOnHoldRequest
	case 1:
		return domain.StatusSecondHoldRequest
	case 2:
		return domain.StatusThirdHoldRequest
	default:
		return domain.StatusUnavailable
	}
}

// ConflictFinder fetches the non-deleted items of other orders that
// reference the same inventory unit and overlap the given range,
// inclusive on both ends.
type ConflictFinder interface {
	ListConflicting(ctx context.Context, inventoryID, excludeOrderID string, pickupAt, returnAt time.Time) ([]domain.OrderItem, error)
}

// Resolver answers plain availability checks: fetch the conflict set
// for an inventory unit over a date range and reduce it.
type Resolver struct {
	conflicts ConflictFinder
}

func NewResolver(conflicts ConflictFinder) *Resolver {
	return &Resolver{conflicts: conflicts}
}

func (r *Resolver) Resolve(ctx context.Context, pickupAt, returnAt time.Time, inventoryID, excludeOrderID string) (Availability, error) {
	items, err := r.conflicts.ListConflicting(ctx, inventoryID, excludeOrderID, pickupAt, returnAt)
	if err != nil {
		return Availability{}, err
	}
	return ResolveAvailability(items), nil
}
