package rng

import "testing"

// TestDeterminism pins the core invariant: the same seed yields the same
// sequence, a different seed a different one.
func TestDeterminism(t *testing.T) {
	a := New(12345)
	b := New(12345)

	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("streams with equal seeds diverged at draw %d", i)
		}
	}

	c := New(12346)
	same := true
	d := New(12345)
	for i := 0; i < 10; i++ {
		if c.Float64() != d.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestFloat64Bounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64 out of [0,1): %v", v)
		}
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(42)
	for i := 0; i < 100; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) succeeded")
		}
		if !s.Chance(1) {
			t.Fatal("Chance(1) failed")
		}
	}
}

func TestIntRangeInclusive(t *testing.T) {
	s := New(9)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := s.IntRange(1, 6)
		if v < 1 || v > 6 {
			t.Fatalf("IntRange(1,6) = %d", v)
		}
		seen[v] = true
	}
	for face := 1; face <= 6; face++ {
		if !seen[face] {
			t.Errorf("face %d never rolled in 1000 draws", face)
		}
	}
}

func TestChoiceAndWeightedChoice(t *testing.T) {
	s := New(3)
	options := []string{"a", "b", "c"}

	got := Choice(s, options)
	if got != "a" && got != "b" && got != "c" {
		t.Errorf("Choice returned %q", got)
	}

	// A dominant weight should dominate the draw counts.
	counts := map[string]int{}
	for i := 0; i < 1000; i++ {
		counts[WeightedChoice(s, options, []float64{98, 1, 1})]++
	}
	if counts["a"] < 900 {
		t.Errorf("weighted choice picked 'a' only %d/1000 times", counts["a"])
	}
}

func TestVariance(t *testing.T) {
	s := New(11)
	for i := 0; i < 100; i++ {
		v := s.Variance(100, 0.1)
		if v < 90 || v > 110 {
			t.Errorf("Variance(100, 0.1) = %v out of [90,110]", v)
		}
	}
}

func TestForkIndependence(t *testing.T) {
	a := New(5)
	fork := a.Fork()

	// The fork must not replay the parent stream.
	if fork.Float64() == New(5).Float64() {
		// One collision is possible but wildly unlikely; check a few draws.
		match := true
		f2 := a.Fork()
		ref := New(5)
		for i := 0; i < 5; i++ {
			if f2.Float64() != ref.Float64() {
				match = false
				break
			}
		}
		if match {
			t.Error("forked stream replays the parent seed")
		}
	}
}
