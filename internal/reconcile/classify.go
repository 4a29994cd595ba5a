package reconcile

import "sort"

// Status is the read-time sync classification for a store. It is recomputed
// on every pass, never persisted.
type Status string

const (
	StatusSynced        Status = "synced"
	StatusNeedsSync     Status = "needs_sync"
	StatusMightNeedSync Status = "might_need_sync"
	StatusNeedsCleanup  Status = "needs_cleanup"
	StatusError         Status = "error"
)

// Classification is the diff between the local mirror and the external
// catalog for one pass.
type Classification struct {
	Status         Status
	MissingLocally []string
	Orphaned       []string
}

// Classify diffs the two id sets. Orphan detection requires an exhaustive
// external fetch; with partial data a clean diff can only mean "might need
// more sync", since unseen pages may still hold the local ids.
func Classify(localIDs, externalIDs []string, exhaustive bool) Classification {
	local := toSet(localIDs)
	external := toSet(externalIDs)

	var missing []string
	for id := range external {
		if _, ok := local[id]; !ok {
			missing = append(missing, id)
		}
	}

	var orphaned []string
	if exhaustive {
		for id := range local {
			if _, ok := external[id]; !ok {
				orphaned = append(orphaned, id)
			}
		}
	}

	sort.Strings(missing)
	sort.Strings(orphaned)

	result := Classification{MissingLocally: missing, Orphaned: orphaned}
	switch {
	case len(missing) > 0:
		result.Status = StatusNeedsSync
	case len(orphaned) > 0:
		result.Status = StatusNeedsCleanup
	case !exhaustive:
		result.Status = StatusMightNeedSync
	default:
		result.Status = StatusSynced
	}
	return result
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
