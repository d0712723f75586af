package types

// StoreStats are whole-store row counts, used by the debug/stats surfaces.
type StoreStats struct {
	TotalUsers               int64 `json:"total_users"`
	TotalAssessments         int64 `json:"total_assessments"`
	TotalLearningPaths       int64 `json:"total_learning_paths"`
	TotalProgressEntries     int64 `json:"total_progress_entries"`
	TotalAgentCommunications int64 `json:"total_agent_communications"`
}
