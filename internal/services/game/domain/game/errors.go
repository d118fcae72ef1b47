package game

import (
	"fmt"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
)

// Slice names the command handler family that rejected a command.
type Slice string

const (
	SliceCampaign    Slice = "campaign"
	SliceMakeChoice  Slice = "make_choice"
	SliceAlliance    Slice = "alliance"
	SliceMediation   Slice = "mediation"
	SliceFleet       Slice = "fleet"
	SliceDeployment  Slice = "deployment"
	SliceConsequence Slice = "consequence"
)

// Kind classifies why a handler rejected a command.
type Kind string

const (
	// KindPhase is a game status or phase precondition.
	KindPhase Kind = "phase"
	// KindMissing is a referenced entity that does not exist.
	KindMissing Kind = "missing"
	// KindStructure is a malformed command, such as an incomplete fleet.
	KindStructure Kind = "structure"
	// KindRule is a domain rule, such as the fleet floor.
	KindRule Kind = "rule"
)

// Error is a handler rejection. Handlers return it before building any event.
type Error struct {
	Slice Slice
	Kind  Kind
	Err   *apperrors.Error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Slice, e.Kind, e.Err.Error())
}

// Unwrap exposes the coded error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Reject builds a handler rejection. meta is a flat list of key, value pairs
// used to render localized messages.
func Reject(slice Slice, kind Kind, code apperrors.Code, message string, meta ...string) *Error {
	var metadata map[string]string
	if len(meta) > 0 {
		metadata = make(map[string]string, len(meta)/2)
		for i := 0; i+1 < len(meta); i += 2 {
			metadata[meta[i]] = meta[i+1]
		}
	}
	return &Error{
		Slice: slice,
		Kind:  kind,
		Err:   apperrors.WithMetadata(code, message, metadata),
	}
}

// RequireInProgress rejects when no game is in progress.
func RequireInProgress(slice Slice, status Status) error {
	if status != StatusInProgress {
		return Reject(slice, KindPhase, apperrors.CodeGameNotInProgress, "game is not in progress", "status", string(status))
	}
	return nil
}

// RequirePhase rejects when phase is not want.
func RequirePhase(slice Slice, phase, want Phase) error {
	if phase != want {
		return Reject(slice, KindPhase, apperrors.CodePhaseMismatch,
			fmt.Sprintf("expected phase %s, got %s", want, phase),
			"expected", string(want), "phase", string(phase))
	}
	return nil
}
