package led

// Output drives the status LED. Implementations must tolerate Set being
// called every loop iteration, mostly with an unchanged value.
type Output interface {
	Set(on bool) error
	Close() error
}

// Discard is an Output wired to nothing, for simulated or headless runs.
type Discard struct{}

func (Discard) Set(on bool) error { return nil }
func (Discard) Close() error      { return nil }
