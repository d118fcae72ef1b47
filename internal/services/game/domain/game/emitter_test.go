package game

import (
	"errors"
	"math"
	"testing"
	"time"

	apperrors "github.com/shawndeggans/space-fortress/internal/platform/errors"
)

func TestEmitterSharesTimestamp(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	emit := NewEmitter(at)
	emit.Emit(EventTypeChoiceMade, ChoiceMadePayload{ChoiceID: "c"})
	emit.PhaseChange(PhaseNarrative, PhaseChoiceConsequence)
	emit.EmitAt(at.Add(BattleDelay), EventTypeFlagSet, FlagSetPayload{Flag: "f", Value: true})

	events, err := emit.Events()
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	if !events[0].Timestamp.Equal(at) || !events[1].Timestamp.Equal(at) {
		t.Fatal("expected shared timestamp")
	}
	if events[0].Timestamp.Location() != time.UTC {
		t.Fatal("expected UTC timestamps")
	}
	if got := events[2].Timestamp.Sub(events[1].Timestamp); got != BattleDelay {
		t.Fatalf("delay = %v, want %v", got, BattleDelay)
	}
	if events[1].Type != EventTypePhaseChanged {
		t.Fatalf("type = %s", events[1].Type)
	}
}

func TestEmitterKeepsFirstError(t *testing.T) {
	emit := NewEmitter(time.Now())
	emit.Emit(EventTypeFlagSet, math.NaN())
	emit.Emit(EventTypeFlagSet, FlagSetPayload{Flag: "f"})

	events, err := emit.Events()
	if err == nil {
		t.Fatal("expected marshal error")
	}
	if events != nil {
		t.Fatal("expected no events on error")
	}
}

func TestRejectCarriesCodeAndMetadata(t *testing.T) {
	err := error(Reject(SliceDeployment, KindStructure, apperrors.CodePositionOutOfRange, "position out of range", "position", "7"))

	var gameErr *Error
	if !errors.As(err, &gameErr) {
		t.Fatal("expected *game.Error")
	}
	if gameErr.Slice != SliceDeployment || gameErr.Kind != KindStructure {
		t.Fatalf("error = %+v", gameErr)
	}
	if apperrors.GetCode(err) != apperrors.CodePositionOutOfRange {
		t.Fatalf("code = %s", apperrors.GetCode(err))
	}
	if apperrors.GetMetadata(err)["position"] != "7" {
		t.Fatalf("metadata = %v", apperrors.GetMetadata(err))
	}
	if !errors.Is(err, apperrors.New(apperrors.CodePositionOutOfRange, "")) {
		t.Fatal("expected errors.Is by code")
	}
}

func TestRequireHelpers(t *testing.T) {
	if err := RequireInProgress(SliceCampaign, StatusInProgress); err != nil {
		t.Fatalf("in progress: %v", err)
	}
	if err := RequireInProgress(SliceCampaign, StatusEnded); apperrors.GetCode(err) != apperrors.CodeGameNotInProgress {
		t.Fatalf("ended: %v", err)
	}
	if err := RequirePhase(SliceFleet, PhaseDeployment, PhaseCardSelection); apperrors.GetCode(err) != apperrors.CodePhaseMismatch {
		t.Fatalf("phase: %v", err)
	}
}

func TestOutcomeRewards(t *testing.T) {
	tests := []struct {
		outcome    Outcome
		modifier   float64
		reputation int
	}{
		{OutcomeVictory, 1, 10},
		{OutcomeDraw, 0.5, 0},
		{OutcomeDefeat, 0, -10},
		{OutcomeCompromise, 0.5, 5},
	}
	for _, tt := range tests {
		if got := tt.outcome.Modifier(); got != tt.modifier {
			t.Fatalf("%s modifier = %v, want %v", tt.outcome, got, tt.modifier)
		}
		if got := tt.outcome.ReputationReward(); got != tt.reputation {
			t.Fatalf("%s reputation = %d, want %d", tt.outcome, got, tt.reputation)
		}
	}
}

func TestReward(t *testing.T) {
	tests := []struct {
		base     int
		modifier float64
		share    float64
		want     int
	}{
		{300, 1, 0, 300},
		{300, 1, 0.2, 240},
		{300, 0.5, 0.5, 75},
		{250, 0.5, 0.35, 81},
		{300, 0, 0, 0},
		{100, 1, 2, 0},
	}
	for _, tt := range tests {
		if got := Reward(tt.base, tt.modifier, tt.share); got != tt.want {
			t.Fatalf("Reward(%d, %v, %v) = %d, want %d", tt.base, tt.modifier, tt.share, got, tt.want)
		}
	}
}
