package reconcile

import (
	"reflect"
	"testing"
)

func TestClassifyMissingLocally(t *testing.T) {
	got := Classify([]string{"A", "B"}, []string{"A", "B", "C"}, true)

	if got.Status != StatusNeedsSync {
		t.Fatalf("expected needs_sync, got %s", got.Status)
	}
	if !reflect.DeepEqual(got.MissingLocally, []string{"C"}) {
		t.Fatalf("expected missing {C}, got %v", got.MissingLocally)
	}
	if len(got.Orphaned) != 0 {
		t.Fatalf("expected no orphans, got %v", got.Orphaned)
	}
}

func TestClassifyOrphansRequireExhaustiveFetch(t *testing.T) {
	got := Classify([]string{"A", "B", "D"}, []string{"A", "B"}, true)
	if got.Status != StatusNeedsCleanup {
		t.Fatalf("expected needs_cleanup, got %s", got.Status)
	}
	if !reflect.DeepEqual(got.Orphaned, []string{"D"}) {
		t.Fatalf("expected orphaned {D}, got %v", got.Orphaned)
	}

	partial := Classify([]string{"A", "B", "D"}, []string{"A", "B"}, false)
	if len(partial.Orphaned) != 0 {
		t.Fatalf("expected no orphans from a partial fetch, got %v", partial.Orphaned)
	}
	if partial.Status != StatusMightNeedSync {
		t.Fatalf("expected might_need_sync, got %s", partial.Status)
	}
}

func TestClassifySynced(t *testing.T) {
	got := Classify([]string{"A", "B"}, []string{"B", "A"}, true)
	if got.Status != StatusSynced {
		t.Fatalf("expected synced, got %s", got.Status)
	}
	if len(got.MissingLocally) != 0 || len(got.Orphaned) != 0 {
		t.Fatalf("expected clean diff, got %+v", got)
	}
}

func TestClassifyMissingTakesPriorityOverOrphans(t *testing.T) {
	got := Classify([]string{"D"}, []string{"C"}, true)
	if got.Status != StatusNeedsSync {
		t.Fatalf("expected needs_sync to take priority, got %s", got.Status)
	}
	if !reflect.DeepEqual(got.MissingLocally, []string{"C"}) || !reflect.DeepEqual(got.Orphaned, []string{"D"}) {
		t.Fatalf("expected both sides reported, got %+v", got)
	}
}

func TestClassifyEmptySets(t *testing.T) {
	if got := Classify(nil, nil, true); got.Status != StatusSynced {
		t.Fatalf("expected synced for empty sets, got %s", got.Status)
	}
	if got := Classify(nil, nil, false); got.Status != StatusMightNeedSync {
		t.Fatalf("expected might_need_sync for empty partial fetch, got %s", got.Status)
	}
}
