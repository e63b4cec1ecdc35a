package samplefeed

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SampleFile summarises one completed analysis job.
type SampleFile struct {
	JobID             string  `json:"job_id"`
	Filename          string  `json:"filename"`
	TotalSequences    int     `json:"total_sequences"`
	CreatedAt         string  `json:"created_at"`
	FileSizeMB        int     `json:"file_size_mb"`
	AvgConfidence     float64 `json:"avg_confidence"`
	NovelSpeciesCount int     `json:"novel_species_count"`
}
