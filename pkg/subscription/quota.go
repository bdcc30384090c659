package subscription

import (
	"orangerides_backend/internal/model"
	"orangerides_backend/pkg/plan"
)

// CanCreateListing decides whether an owner may publish one more listing.
// Pure check, no I/O: callers pass the current listing count they read.
// The count is read non-atomically relative to the insert, so two
// concurrent creates can both pass at quota-1; the quota is a soft limit.
func CanCreateListing(catalog plan.Catalog, owner *model.Owner, listingCount int64) bool {
	if owner == nil || owner.Status != model.OwnerStatusActive {
		return false
	}

	key := plan.Key(owner.CurrentPlan)
	if key == plan.None {
		return false
	}

	quota := catalog.QuotaFor(key)
	if quota == plan.Unbounded {
		return true
	}

	return listingCount < int64(quota)
}

// NearLimit reports whether newCount puts the owner at or past 80% of a
// finite quota. Evaluated once per successful creation, so it fires on
// every creation past the threshold, not just the first crossing.
func NearLimit(catalog plan.Catalog, key plan.Key, newCount int64) bool {
	quota := catalog.QuotaFor(key)
	if quota <= 0 {
		return false
	}
	return float64(newCount)/float64(quota) >= 0.8
}
