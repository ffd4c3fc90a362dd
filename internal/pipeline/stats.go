package pipeline

// GetStats returns current pipeline statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"goalConcurrency": s.goalConcurrency,
		"runInterval":     s.interval.String(),
		"runBudget":       s.runBudget.String(),
		"providers":       s.registry.Names(),
	}

	if r := s.Latest(); r != nil {
		stats["lastRunID"] = r.RunID
		stats["lastRunFinishedAt"] = r.FinishedAt
		stats["lastRunDuration"] = r.Duration
		stats["goalsSeen"] = r.GoalsSeen
		stats["goalsProcessed"] = r.Processed()
		stats["goalsStuck"] = len(r.StuckGoals())
	}
	return stats
}
