package session

// Stage is the lifecycle position of a capture session. Stages only move
// forward through the machine; the sole backward edge is the explicit
// "add more images" choice from the confirmation step.
type Stage string

const (
	StageAwaitingImages     Stage = "awaiting_images"
	StageConfirming         Stage = "confirming_complete"
	StageResolvingConflicts Stage = "resolving_conflicts"
	StageFinalConfirmation  Stage = "final_confirmation"
	StageCompleted          Stage = "completed"
	StageCancelled          Stage = "cancelled"
	StageExpired            Stage = "expired"
)

// Terminal reports whether the stage ends the session.
func (s Stage) Terminal() bool {
	switch s {
	case StageCompleted, StageCancelled, StageExpired:
		return true
	default:
		return false
	}
}
