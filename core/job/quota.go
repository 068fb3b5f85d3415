package job

// CanPost reports whether an org may post another job given its current
// count of active (open) jobs and its plan's ceiling.
// Plus members are never quota-limited.
//
// This is the authoritative server-side check; any client-side copy is
// an advisory UX affordance only.
func CanPost(activeCount, limit int, isPlus bool) bool {
	return isPlus || activeCount < limit
}
