package chart

import (
	"testing"
	"time"
)

func registryConfig() Config {
	return Config{
		XLabels: []string{"Mon", "Tue", "Wed"},
		Series: []Series{
			{ID: "temp", Name: "Temperature", Type: TypeLine, Data: []float64{0, 5, -2}},
		},
	}
}

func TestRegistryAcquireIsIdempotent(t *testing.T) {
	r := NewRegistry(0)
	var ct Container

	first := r.Acquire(&ct, registryConfig(), Options{})
	if !ct.Tagged() {
		t.Fatal("acquire did not tag the container")
	}
	second := r.Acquire(&ct, registryConfig(), Options{})
	if first != second {
		t.Error("reacquire constructed a second instance for the same container")
	}
	if r.Len() != 1 {
		t.Errorf("registry holds %d instances, want 1", r.Len())
	}
}

func TestRegistryGracePeriod(t *testing.T) {
	r := NewRegistry(100 * time.Millisecond)
	var ct Container
	t0 := time.Unix(1000, 0)

	ch := r.Acquire(&ct, registryConfig(), Options{})
	r.Release(&ct, t0)
	// Within the grace period nothing is destroyed.
	if n := r.Sweep(t0.Add(50 * time.Millisecond)); n != 0 {
		t.Fatalf("sweep inside the grace period destroyed %d instances", n)
	}
	// Reacquiring before expiry cancels the release and keeps state.
	if got := r.Acquire(&ct, registryConfig(), Options{}); got != ch {
		t.Fatal("reacquire within the grace period did not return the live instance")
	}
	if n := r.Sweep(t0.Add(time.Hour)); n != 0 {
		t.Errorf("sweep destroyed a reclaimed instance (%d)", n)
	}

	r.Release(&ct, t0)
	if n := r.Sweep(t0.Add(100 * time.Millisecond)); n != 1 {
		t.Errorf("sweep after expiry destroyed %d instances, want 1", n)
	}
	if r.Len() != 0 {
		t.Errorf("registry still holds %d instances", r.Len())
	}
	if !ch.destroyed {
		t.Error("swept instance was not destroyed")
	}
}

func TestRegistryReleaseKeepsOriginalDeadline(t *testing.T) {
	r := NewRegistry(100 * time.Millisecond)
	var ct Container
	t0 := time.Unix(1000, 0)

	r.Acquire(&ct, registryConfig(), Options{})
	r.Release(&ct, t0)
	// A second release must not push the deadline out.
	r.Release(&ct, t0.Add(90*time.Millisecond))
	if n := r.Sweep(t0.Add(110 * time.Millisecond)); n != 1 {
		t.Errorf("repeated release extended the grace period (swept %d)", n)
	}
}

func TestRegistryDestroyImmediate(t *testing.T) {
	r := NewRegistry(0)
	var ct Container

	ch := r.Acquire(&ct, registryConfig(), Options{})
	r.Destroy(&ct)
	if !ch.destroyed {
		t.Error("destroy did not tear down the instance")
	}
	if ct.Tagged() {
		t.Error("destroy left the container tagged")
	}
	// Double destroy and destroy of an unbound container are no-ops.
	r.Destroy(&ct)
	r.Destroy(&Container{})
	if r.Len() != 0 {
		t.Errorf("registry holds %d instances after destroy", r.Len())
	}
}

func TestRegistryUpdateUntrackedContainer(t *testing.T) {
	r := NewRegistry(0)
	var ct Container
	// Must not panic and must not implicitly create an instance.
	r.Update(&ct, registryConfig())
	if r.Len() != 0 {
		t.Errorf("update created %d instances", r.Len())
	}
}

func TestRegistryUpdatePreservesInstance(t *testing.T) {
	r := NewRegistry(0)
	var ct Container

	ch := r.Acquire(&ct, registryConfig(), Options{})
	ch.SetXScale(Scale{Min: 0, Max: 1})

	cfg := registryConfig()
	cfg.Series[0].Data = []float64{3, 1, 4}
	r.Update(&ct, cfg)

	got, ok := r.Get(&ct)
	if !ok || got != ch {
		t.Fatal("update replaced the instance")
	}
	if ch.Config().Series[0].Data[0] != 3 {
		t.Error("update did not apply the new data")
	}
	if ch.XScale() != (Scale{Min: 0, Max: 1}) {
		t.Errorf("update reset the window to %+v", ch.XScale())
	}
}
