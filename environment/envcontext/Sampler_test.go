package envcontext

import (
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestSampler ensures sampled contexts are complete, legal, and take
// default values for features without a distribution
func TestSampler(t *testing.T) {
	space := Space{
		"gravity": NewFeature(1.0, 20.0, Continuous),
		"mass":    NewFeature(0.1, 10.0, Continuous),
		"length":  NewFeature(0.1, 10.0, Continuous),
	}
	defaults := Context{"gravity": 9.8, "mass": 1.0, "length": 1.0}

	source := rand.NewSource(42)
	dists := map[string]Rander{
		// Wider than the legal region, so clipping must trigger
		// eventually
		"gravity": distuv.Uniform{Min: -10.0, Max: 50.0, Src: source},
		"mass":    distuv.Uniform{Min: 0.5, Max: 2.0, Src: source},
	}

	sampler, err := NewSampler(space, defaults, dists)
	if err != nil {
		t.Fatalf("could not create sampler: %v", err)
	}

	for i := 0; i < 100; i++ {
		c := sampler.Sample()

		if err := space.Validate(c); err != nil {
			t.Fatalf("sampled context is illegal: %v", err)
		}
		if c["length"] != 1.0 {
			t.Errorf("feature without a distribution lost its default "+
				"\n\twant(1.0) \n\thave(%v)", c["length"])
		}
		if c["mass"] < 0.5 || c["mass"] > 2.0 {
			t.Errorf("sampled mass outside its distribution support: %v",
				c["mass"])
		}
	}
}

// TestSamplerUnknownFeature ensures distributions over unknown
// features are rejected at construction
func TestSamplerUnknownFeature(t *testing.T) {
	space := Space{"gravity": NewFeature(1.0, 20.0, Continuous)}
	defaults := Context{"gravity": 9.8}
	dists := map[string]Rander{
		"wind": distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(1)},
	}

	if _, err := NewSampler(space, defaults, dists); err == nil {
		t.Error("sampler accepted a distribution over an unknown feature")
	}
}

// TestSamplerMissingDefault ensures an incomplete default context is
// rejected at construction
func TestSamplerMissingDefault(t *testing.T) {
	space := Space{
		"gravity": NewFeature(1.0, 20.0, Continuous),
		"mass":    NewFeature(0.1, 10.0, Continuous),
	}
	defaults := Context{"gravity": 9.8}

	if _, err := NewSampler(space, defaults, nil); err == nil {
		t.Error("sampler accepted defaults missing a space feature")
	}
}

// TestSampleN ensures SampleN returns the requested number of contexts
// under distinct ids
func TestSampleN(t *testing.T) {
	space := Space{"gravity": NewFeature(1.0, 20.0, Continuous)}
	defaults := Context{"gravity": 9.8}
	dists := map[string]Rander{
		"gravity": distuv.Uniform{Min: 2, Max: 15, Src: rand.NewSource(3)},
	}

	sampler, err := NewSampler(space, defaults, dists)
	if err != nil {
		t.Fatalf("could not create sampler: %v", err)
	}

	contexts := sampler.SampleN(10)
	if len(contexts) != 10 {
		t.Errorf("wrong number of contexts \n\twant(10) \n\thave(%v)",
			len(contexts))
	}
	for id, c := range contexts {
		if err := space.Validate(c); err != nil {
			t.Errorf("sampled context %v is illegal: %v", id, err)
		}
	}
}
