package chart

import "testing"

func syncedChart(sc *SyncContext, key string, n int) *Chart {
	labels := make([]string, n)
	data := make([]float64, n)
	for i := range labels {
		labels[i] = "t"
		data[i] = float64(i)
	}
	return New(Config{
		XLabels: labels,
		Series:  []Series{{ID: "s", Type: TypeLine, Data: data}},
	}, Options{Sync: sc, SyncKey: key})
}

func TestSyncPropagatesWindow(t *testing.T) {
	sc := NewSyncContext()
	a := syncedChart(sc, "storm", 100)
	b := syncedChart(sc, "storm", 100)
	other := syncedChart(sc, "calm", 100)

	a.SetXScale(Scale{Min: 10, Max: 30})
	if b.XScale() != (Scale{Min: 10, Max: 30}) {
		t.Errorf("group member window = %+v, want {10 30}", b.XScale())
	}
	if other.XScale() != FullExtent(100) {
		t.Errorf("window leaked across groups: %+v", other.XScale())
	}

	// The member that received the window can push its own without
	// echoing back and forth.
	b.SetXScale(Scale{Min: 40, Max: 50})
	if a.XScale() != (Scale{Min: 40, Max: 50}) {
		t.Errorf("reverse propagation failed: %+v", a.XScale())
	}
}

func TestSyncClampsToMemberLength(t *testing.T) {
	sc := NewSyncContext()
	long := syncedChart(sc, "storm", 100)
	short := syncedChart(sc, "storm", 10)

	// A window wider than the short member's extent collapses to its
	// full extent.
	long.SetXScale(Scale{Min: 80, Max: 95})
	if got := short.XScale(); got != FullExtent(10) {
		t.Errorf("short member window = %+v, want full extent", got)
	}

	// A narrow window past the short member's end slides back in with
	// its width intact.
	long.SetXScale(Scale{Min: 90, Max: 95})
	got := short.XScale()
	if got != (Scale{Min: 4, Max: 9}) {
		t.Errorf("short member window = %+v, want {4 9}", got)
	}
}

func TestSyncLeaveOnDestroy(t *testing.T) {
	sc := NewSyncContext()
	a := syncedChart(sc, "storm", 100)
	b := syncedChart(sc, "storm", 100)

	b.Destroy()
	a.SetXScale(Scale{Min: 5, Max: 25})
	if b.XScale() != FullExtent(100) {
		t.Errorf("destroyed member still receives windows: %+v", b.XScale())
	}
}
