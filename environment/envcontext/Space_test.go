package envcontext

import "testing"

func testSpace() Space {
	return Space{
		"gravity":     NewFeature(0.1, 25.0, Continuous),
		"pole_length": NewFeature(0.05, 10.0, Continuous),
		"num_poles":   NewFeature(1, 3, Discrete),
		"level":       NewCategorical([]float64{0, 3, 7}),
	}
}

// TestValidateLegal ensures a fully legal context validates
func TestValidateLegal(t *testing.T) {
	s := testSpace()
	c := Context{
		"gravity":     9.8,
		"pole_length": 0.5,
		"num_poles":   2,
		"level":       3,
	}

	if err := s.Validate(c); err != nil {
		t.Errorf("legal context failed to validate: %v", err)
	}
}

// TestValidateUnknownFeature ensures features outside the space are
// rejected
func TestValidateUnknownFeature(t *testing.T) {
	s := testSpace()
	c := Context{"gravity": 9.8, "wind": 1.0}

	if err := s.Validate(c); err == nil {
		t.Error("context with an unknown feature validated")
	}
}

// TestValidateBounds ensures out-of-bounds continuous values are
// rejected
func TestValidateBounds(t *testing.T) {
	s := testSpace()

	if err := s.Validate(Context{"gravity": 30.0}); err == nil {
		t.Error("out-of-bounds continuous value validated")
	}
	if err := s.Validate(Context{"gravity": 0.0}); err == nil {
		t.Error("below-bounds continuous value validated")
	}
}

// TestValidateDiscrete ensures non-integral values of discrete
// features are rejected
func TestValidateDiscrete(t *testing.T) {
	s := testSpace()

	if err := s.Validate(Context{"num_poles": 1.5}); err == nil {
		t.Error("non-integral discrete value validated")
	}
	if err := s.Validate(Context{"num_poles": 2}); err != nil {
		t.Errorf("integral discrete value failed to validate: %v", err)
	}
}

// TestValidateCategorical ensures only listed categorical values
// validate
func TestValidateCategorical(t *testing.T) {
	s := testSpace()

	if err := s.Validate(Context{"level": 2}); err == nil {
		t.Error("unlisted categorical value validated")
	}
	if err := s.Validate(Context{"level": 7}); err != nil {
		t.Errorf("listed categorical value failed to validate: %v", err)
	}
}

// TestClip checks that clipping moves every value to the nearest legal
// value and reports what changed
func TestClip(t *testing.T) {
	s := testSpace()
	c := Context{
		"gravity":     30.0, // above the max
		"pole_length": 0.5,  // already legal
		"num_poles":   2.4,  // non-integral
		"level":       4,    // snaps to nearest of {0, 3, 7}
	}

	clipped, changed := s.Clip(c)

	if clipped["gravity"] != 25.0 {
		t.Errorf("continuous value not clipped to bound \n\twant(25.0) "+
			"\n\thave(%v)", clipped["gravity"])
	}
	if clipped["pole_length"] != 0.5 {
		t.Errorf("legal value changed by clipping \n\twant(0.5) "+
			"\n\thave(%v)", clipped["pole_length"])
	}
	if clipped["num_poles"] != 2.0 {
		t.Errorf("discrete value not rounded \n\twant(2.0) \n\thave(%v)",
			clipped["num_poles"])
	}
	if clipped["level"] != 3.0 {
		t.Errorf("categorical value not snapped \n\twant(3.0) \n\thave(%v)",
			clipped["level"])
	}

	expectedChanged := []string{"gravity", "level", "num_poles"}
	if len(changed) != len(expectedChanged) {
		t.Fatalf("wrong number of changed features \n\twant(%v) "+
			"\n\thave(%v)", len(expectedChanged), len(changed))
	}
	for i := range expectedChanged {
		if changed[i] != expectedChanged[i] {
			t.Errorf("wrong changed feature at index %v \n\twant(%v) "+
				"\n\thave(%v)", i, expectedChanged[i], changed[i])
		}
	}

	// The original context should be untouched
	if c["gravity"] != 30.0 {
		t.Error("clip modified its argument")
	}

	// A clipped context should always validate
	if err := s.Validate(clipped); err != nil {
		t.Errorf("clipped context failed to validate: %v", err)
	}
}
