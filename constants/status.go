package constants

// Stage is the canonical name for a pipeline stage while a file is in flight.
type Stage string

// Stable values (these exact strings appear in logs and display status).
const (
	StageExtracting Stage = "EXTRACTING"
	StageGenerating Stage = "GENERATING_FILENAME"
	StageValidating Stage = "VALIDATING"
	StageMoving     Stage = "MOVING"
	StageCompleted  Stage = "COMPLETED"
	StageFailed     Stage = "FAILED"
)
