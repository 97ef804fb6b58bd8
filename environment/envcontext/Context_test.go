package envcontext

import "testing"

// TestMerge ensures that merging a partial context with defaults
// completes the context without modifying either argument
func TestMerge(t *testing.T) {
	defaults := Context{"gravity": 9.8, "mass": 1.0, "length": 1.0}
	partial := Context{"gravity": 12.5}

	merged := partial.Merge(defaults)

	if len(merged) != 3 {
		t.Errorf("merged context has wrong number of features \n\twant(3) "+
			"\n\thave(%v)", len(merged))
	}
	if merged["gravity"] != 12.5 {
		t.Errorf("merge did not keep the overriding value \n\twant(12.5) "+
			"\n\thave(%v)", merged["gravity"])
	}
	if merged["mass"] != 1.0 || merged["length"] != 1.0 {
		t.Error("merge did not take missing features from the defaults")
	}

	// Neither argument should change
	if len(partial) != 1 {
		t.Error("merge modified its receiver")
	}
	if defaults["gravity"] != 9.8 {
		t.Error("merge modified the defaults")
	}
}

// TestMergeKeepsUnknownFeatures ensures features absent from the
// defaults survive a merge
func TestMergeKeepsUnknownFeatures(t *testing.T) {
	defaults := Context{"gravity": 9.8}
	c := Context{"wind": 3.0}

	merged := c.Merge(defaults)
	if merged["wind"] != 3.0 {
		t.Errorf("merge dropped a feature the defaults lack \n\twant(3.0) "+
			"\n\thave(%v)", merged["wind"])
	}
}

// TestClone ensures cloned contexts do not share storage
func TestClone(t *testing.T) {
	c := Context{"gravity": 9.8, "mass": 1.0}
	clone := c.Clone()

	clone["gravity"] = 0.0
	if c["gravity"] != 9.8 {
		t.Error("modifying a clone modified the original context")
	}
}

// TestKeys ensures feature names are returned in sorted order
func TestKeys(t *testing.T) {
	c := Context{"mass": 1.0, "gravity": 9.8, "length": 1.0, "dt": 0.05}

	keys := c.Keys()
	expected := []string{"dt", "gravity", "length", "mass"}

	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("keys out of order at index %v \n\twant(%v) "+
				"\n\thave(%v)", i, expected[i], keys[i])
		}
	}
}

// TestEquals checks context equality under a tolerance
func TestEquals(t *testing.T) {
	a := Context{"gravity": 9.8, "mass": 1.0}
	b := Context{"gravity": 9.8 + 1e-12, "mass": 1.0}
	c := Context{"gravity": 9.8}

	if !a.Equals(b, 1e-8) {
		t.Error("contexts equal within tolerance reported unequal")
	}
	if a.Equals(b, 1e-16) {
		t.Error("contexts unequal within tolerance reported equal")
	}
	if a.Equals(c, 1e-8) {
		t.Error("contexts with different features reported equal")
	}
}
