package properties

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	// Lisbon to Porto is roughly 274 km as the crow flies.
	got := distanceKm(38.7223, -9.1393, 41.1579, -8.6291)
	if math.Abs(got-274) > 5 {
		t.Fatalf("unexpected distance %.1f", got)
	}
	if d := distanceKm(10, 10, 10, 10); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestBoxAroundContainsRadius(t *testing.T) {
	box := boxAround(38.7223, -9.1393, 10)
	if box.MinLat >= 38.7223 || box.MaxLat <= 38.7223 || box.MinLng >= -9.1393 || box.MaxLng <= -9.1393 {
		t.Fatalf("box does not contain its center: %+v", box)
	}
	north := distanceKm(38.7223, -9.1393, box.MaxLat, -9.1393)
	if math.Abs(north-10) > 0.1 {
		t.Fatalf("expected latitude edge ~10km away, got %.3f", north)
	}
	east := distanceKm(38.7223, -9.1393, 38.7223, box.MaxLng)
	if east < 10 {
		t.Fatalf("longitude edge must not under-select, got %.3f", east)
	}
}

func TestBoxAroundEdgeCases(t *testing.T) {
	polar := boxAround(89.99, 0, 50)
	if polar.MaxLat != 90 || polar.MinLng != -180 || polar.MaxLng != 180 {
		t.Fatalf("expected full longitude range near the pole, got %+v", polar)
	}
	dateline := boxAround(0, 179.99, 50)
	if dateline.MinLng != -180 || dateline.MaxLng != 180 {
		t.Fatalf("expected full longitude range across the antimeridian, got %+v", dateline)
	}
}
