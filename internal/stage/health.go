package stage

// Health reports whether a pipeline stage can currently run, for example
// whether its analysis script exists and is executable.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy marks the named stage as ready to process items.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy marks the named stage as unavailable, with a human-readable
// reason surfaced through status output.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
