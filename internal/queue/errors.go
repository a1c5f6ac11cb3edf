package queue

// RollbackStatus returns the status an in-flight item should return to when
// its stage is abandoned (daemon shutdown, stale heartbeat). The second return
// is false when the status has no rollback target.
func RollbackStatus(status Status) (Status, bool) {
	for _, transition := range stageRollbackTransitions {
		if transition.from == status {
			return transition.to, true
		}
	}
	return status, false
}
