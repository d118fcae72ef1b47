// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Command envelope errors
	CodeCommandStreamRequired  Code = "COMMAND_STREAM_REQUIRED"
	CodeCommandTypeUnknown     Code = "COMMAND_TYPE_UNKNOWN"
	CodeCommandPayloadInvalid  Code = "COMMAND_PAYLOAD_INVALID"
	CodeCommandPhaseNotAllowed Code = "COMMAND_PHASE_NOT_ALLOWED"

	// Game lifecycle errors
	CodeGameNotInProgress     Code = "GAME_NOT_IN_PROGRESS"
	CodeGameAlreadyInProgress Code = "GAME_ALREADY_IN_PROGRESS"
	CodePhaseMismatch         Code = "PHASE_MISMATCH"
	CodePhaseTransitionDenied Code = "PHASE_TRANSITION_DENIED"
	CodePlayerIDRequired      Code = "PLAYER_ID_REQUIRED"

	// Quest errors
	CodeQuestNotFound       Code = "QUEST_NOT_FOUND"
	CodeQuestNotAvailable   Code = "QUEST_NOT_AVAILABLE"
	CodeQuestAlreadyActive  Code = "QUEST_ALREADY_ACTIVE"
	CodeQuestNotActive      Code = "QUEST_NOT_ACTIVE"
	CodeQuestHasNoDilemmas  Code = "QUEST_HAS_NO_DILEMMAS"
	CodeQuestSummaryMissing Code = "QUEST_SUMMARY_MISSING"

	// Dilemma and choice errors
	CodeDilemmaNotFound       Code = "DILEMMA_NOT_FOUND"
	CodeDilemmaNotPresented   Code = "DILEMMA_NOT_PRESENTED"
	CodeChoiceNotFound        Code = "CHOICE_NOT_FOUND"
	CodeChoiceBelowFleetFloor Code = "CHOICE_BELOW_FLEET_FLOOR"
	CodeConsequenceMissing    Code = "CONSEQUENCE_MISSING"

	// Alliance errors
	CodeAllianceNotOffered    Code = "ALLIANCE_NOT_OFFERED"
	CodeAllianceAlreadyFormed Code = "ALLIANCE_ALREADY_FORMED"
	CodeAllianceLimitReached  Code = "ALLIANCE_LIMIT_REACHED"
	CodeAllianceReputationLow Code = "ALLIANCE_REPUTATION_TOO_LOW"
	CodeBattleUndefined       Code = "BATTLE_UNDEFINED"

	// Mediation errors
	CodeMediationNotActive     Code = "MEDIATION_NOT_ACTIVE"
	CodeMediationNotFound      Code = "MEDIATION_NOT_FOUND"
	CodeMediationAlreadyLeaned Code = "MEDIATION_ALREADY_LEANED"
	CodeMediationNotLeaned     Code = "MEDIATION_NOT_LEANED"
	CodeMediationNotParty      Code = "MEDIATION_FACTION_NOT_PARTY"

	// Fleet errors
	CodeBattleNotActive      Code = "BATTLE_NOT_ACTIVE"
	CodeBattlePhaseMismatch  Code = "BATTLE_PHASE_MISMATCH"
	CodeCardNotOwned         Code = "CARD_NOT_OWNED"
	CodeCardLocked           Code = "CARD_LOCKED"
	CodeCardAlreadySelected  Code = "CARD_ALREADY_SELECTED"
	CodeCardNotSelected      Code = "CARD_NOT_SELECTED"
	CodeFleetFull            Code = "FLEET_FULL"
	CodeFleetIncomplete      Code = "FLEET_INCOMPLETE"
	CodeCardNotInFleet       Code = "CARD_NOT_IN_FLEET"
	CodePositionOutOfRange   Code = "POSITION_OUT_OF_RANGE"
	CodePositionsIncomplete  Code = "POSITIONS_INCOMPLETE"
	CodePositionsDuplicate   Code = "POSITIONS_DUPLICATE"
	CodeCardNotFound         Code = "CARD_NOT_FOUND"
	CodeOpponentFleetInvalid Code = "OPPONENT_FLEET_INVALID"
	CodeSeedUnavailable      Code = "SEED_UNAVAILABLE"

	// Consequence errors
	CodeResolutionMissing      Code = "RESOLUTION_MISSING"
	CodeOutcomeAlreadyAcked    Code = "OUTCOME_ALREADY_ACKNOWLEDGED"
	CodeOutcomeNotAcknowledged Code = "OUTCOME_NOT_ACKNOWLEDGED"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeStreamConflict   Code = "STREAM_CONFLICT"
	CodeIntegrityBroken  Code = "INTEGRITY_BROKEN"
	CodeSnapshotMismatch Code = "SNAPSHOT_SCHEMA_MISMATCH"
)
