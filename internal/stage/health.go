package stage

// Health is a stage's answer to "can you run right now?". Detail names the
// missing tool, file, or directory when Ready is false.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage with every prerequisite in place.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that must not run, with the reason shown by
// `voiceregen check` and logged before the stage is refused.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}
