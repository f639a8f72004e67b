package discovery

// ProgressSink receives discovery events for live display. Implementations
// must tolerate concurrent calls; the engine works identically with a no-op
// sink.
type ProgressSink interface {
	// Log receives one human-readable activity line.
	Log(line string)
	// LevelStart announces that expansion of a depth level is beginning.
	LevelStart(level, maxDepth int)
	// ProfileAdded reports the running total after each discovered record.
	ProfileAdded(total int)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Log(string)          {}
func (NopSink) LevelStart(int, int) {}
func (NopSink) ProfileAdded(int)    {}
