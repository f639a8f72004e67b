package model

// Report is the terminal aggregate of one discovery run. Profiles are in
// discovery order: concurrent fetches within a level may interleave, so the
// order is not BFS-canonical.
type Report struct {
	RunID           string    `json:"run_id"`
	Profiles        []Profile `json:"profiles"`
	TotalDiscovered int       `json:"total_discovered"`
	// UniqueURNs counts every URN seen during the run, including
	// candidates whose full-profile fetch later failed.
	UniqueURNs      int       `json:"unique_urns"`
	FailedUsernames []string  `json:"failed_usernames"`
	FailedURNs      []string  `json:"failed_urns"`
}
