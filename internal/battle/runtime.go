package battle

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle/enchant"
	"github.com/mep3ab4ik/GoB/internal/config"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// ValidationError is a bad client intent: reported to the originating
// connection only, battle state untouched.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError.
func Invalid(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Runtime is one loaded battle: its state plus the services every action
// needs. All methods assume the caller holds the battle's exclusive lock.
type Runtime struct {
	State  *State
	store  Store
	ench   *enchant.Engine
	logger *zap.Logger
	cfg    config.BattleConfig
	rng    *rand.Rand
	now    func() time.Time

	// pending trigger occurrences queued by actions, drained by the
	// trigger pipeline after the primary hook returns.
	pending []occurrence
}

// NewRuntime assembles a runtime around loaded state.
func NewRuntime(st *State, store Store, ench *enchant.Engine, cfg config.BattleConfig, logger *zap.Logger) *Runtime {
	if st.Events == nil {
		st.Events = &EventLog{}
	}
	return &Runtime{
		State:  st,
		store:  store,
		ench:   ench,
		logger: logger,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Ench exposes the enchantment engine to ability code.
func (rt *Runtime) Ench() *enchant.Engine {
	return rt.ench
}

// Rand exposes the runtime's random source for ability random selection.
func (rt *Runtime) Rand() *rand.Rand {
	return rt.rng
}

// Logger returns the battle-scoped logger.
func (rt *Runtime) Logger() *zap.Logger {
	return rt.logger
}

// Complete moves the battle to COMPLETED with the given winner seat (nil
// declares a draw) and emits the end_battle event.
func (rt *Runtime) Complete(ctx context.Context, winner *Side, endType model.BattleEndType) error {
	b := rt.State.Battle
	if b.State.IsTerminal() {
		return nil
	}
	var winnerPlayerID *int64
	payload := map[string]any{"end_type": string(endType)}
	if winner != nil {
		winnerPlayerID = &winner.Player.PlayerID
		payload["winner_player_id"] = winner.Player.PlayerID
		payload["winner_idx"] = winner.Idx()
	}
	b.Complete(winnerPlayerID, rt.now())
	b.EndType = endType
	if err := rt.store.SaveBattle(ctx, b); err != nil {
		return fmt.Errorf("complete battle %d: %w", b.ID, err)
	}
	rt.State.Events.Record(b.TurnIdx, EventEndBattle, payload)
	return nil
}

// Discard forces the battle into the terminal DISCARDED state. Used for
// declared draws and for invariant violations, which are logged rather than
// surfaced to players.
func (rt *Runtime) Discard(ctx context.Context, reason string) error {
	b := rt.State.Battle
	if b.State.IsTerminal() {
		return nil
	}
	now := rt.now()
	b.State = model.BattleDiscarded
	b.BattleEnd = &now
	if err := rt.store.SaveBattle(ctx, b); err != nil {
		return fmt.Errorf("discard battle %d: %w", b.ID, err)
	}
	rt.logger.Warn("battle discarded",
		zap.Int64("battle_id", b.ID),
		zap.String("reason", reason),
	)
	rt.State.Events.Record(b.TurnIdx, EventEndBattle, map[string]any{"end_type": "discarded"})
	return nil
}

// recordHistory appends an audit record, logging instead of failing the
// action when the write does not land.
func (rt *Runtime) recordHistory(ctx context.Context, side *Side, cardID int64, typ model.HistoryRecordType) {
	h := &model.CardHistory{
		BattleID:       rt.State.Battle.ID,
		BattlePlayerID: side.Player.ID,
		CardID:         cardID,
		TurnNumber:     rt.State.Battle.TurnNumber,
		RecordType:     typ,
	}
	if err := rt.store.AddHistory(ctx, h); err != nil {
		rt.logger.Error("failed to record card history",
			zap.Int64("battle_id", rt.State.Battle.ID),
			zap.Int64("card_id", cardID),
			zap.String("record_type", string(typ)),
			zap.Error(err),
		)
	}
}
