package assert

// True panics if b is false.
func True(b bool) {
	if !b {
		panic("assertion failed")
	}
}
