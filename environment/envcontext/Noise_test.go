package envcontext

import (
	"math"
	"testing"
)

// TestNoise checks that noise perturbs continuous features, skips
// categorical and zero-valued features, and scales with the value
// magnitude
func TestNoise(t *testing.T) {
	s := Space{
		"gravity": NewFeature(-100, 100, Continuous),
		"wind":    NewFeature(-100, 100, Continuous),
		"level":   NewCategorical([]float64{0, 1, 2}),
	}
	c := Context{"gravity": 9.8, "wind": 0.0, "level": 1}

	noise := NewNoise(0.1, 42)
	noisy := noise.Apply(c, s)

	if noisy["gravity"] == 9.8 {
		t.Error("continuous feature was not perturbed")
	}
	if noisy["wind"] != 0.0 {
		t.Error("zero-valued feature was perturbed")
	}
	if noisy["level"] != 1 {
		t.Error("categorical feature was perturbed")
	}
	if c["gravity"] != 9.8 {
		t.Error("noise modified its argument")
	}

	// With std = 10% of the magnitude, a deviation above 80% of the
	// value would be an 8 sigma event
	if math.Abs(noisy["gravity"]-9.8) > 0.8*9.8 {
		t.Errorf("perturbation out of any reasonable range: %v",
			noisy["gravity"])
	}
}

// TestNoiseWhitelist ensures only whitelisted features are perturbed
func TestNoiseWhitelist(t *testing.T) {
	s := Space{
		"gravity": NewFeature(-100, 100, Continuous),
		"mass":    NewFeature(0.01, 100, Continuous),
	}
	c := Context{"gravity": 9.8, "mass": 1.0}

	noise := NewNoise(0.1, 42)
	noisy := noise.ApplyTo(c, s, []string{"mass"})

	if noisy["gravity"] != 9.8 {
		t.Error("feature outside the whitelist was perturbed")
	}
	if noisy["mass"] == 1.0 {
		t.Error("whitelisted feature was not perturbed")
	}
}

// TestNoiseSeeded ensures equal seeds perturb identically
func TestNoiseSeeded(t *testing.T) {
	s := Space{"gravity": NewFeature(-100, 100, Continuous)}
	c := Context{"gravity": 9.8}

	first := NewNoise(0.05, 7)
	second := NewNoise(0.05, 7)

	for i := 0; i < 10; i++ {
		a := first.Apply(c, s)
		b := second.Apply(c, s)
		if a["gravity"] != b["gravity"] {
			t.Fatalf("noise with equal seeds diverged on draw %v: %v != %v",
				i, a["gravity"], b["gravity"])
		}
	}
}
