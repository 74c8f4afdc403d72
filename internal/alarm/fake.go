package alarm

// FakeOutput records assert and deassert calls.
type FakeOutput struct {
	On        bool
	Asserts   int
	Deasserts int
}

// Assert records an assert.
func (f *FakeOutput) Assert() {
	f.On = true
	f.Asserts++
}

// Deassert records a deassert.
func (f *FakeOutput) Deassert() {
	f.On = false
	f.Deasserts++
}
