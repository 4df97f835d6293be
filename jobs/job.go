package jobs

// Job blocks for as long as its schedule runs.
type Job interface {
	Process()
}
