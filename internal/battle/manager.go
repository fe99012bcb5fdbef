package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle/enchant"
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/config"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// Notifier is the real-time transport boundary: it delivers one recipient's
// event batch and tears connections down when a battle ends.
type Notifier interface {
	Deliver(roomID string, playerID int64, events []Event)
	Teardown(roomID string)
}

// DeckProvider resolves a player's currently selected custom deck for modes
// that do not generate random decks.
type DeckProvider interface {
	DeckFor(ctx context.Context, playerID int64, mode *model.GameMode) ([]*model.Card, error)
}

// Manager orchestrates battles: it serializes every action under the
// per-battle lock, reconstructs state from cache plus durable store for each
// handled message, and schedules the turn, duration and reconnect-grace
// timers. No battle state outlives one handled message outside the cache.
type Manager struct {
	store     Store
	enchStore enchant.Store
	cache     *cache.Client
	notifier  Notifier
	decks     DeckProvider
	sched     *Scheduler
	cfg       config.BattleConfig
	logger    *zap.Logger
}

// NewManager wires the battle manager.
func NewManager(store Store, enchStore enchant.Store, cacheClient *cache.Client, notifier Notifier, decks DeckProvider, cfg config.BattleConfig, logger *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		enchStore: enchStore,
		cache:     cacheClient,
		notifier:  notifier,
		decks:     decks,
		sched:     NewScheduler(),
		cfg:       cfg,
		logger:    logger,
	}
}

// Stop cancels all pending timers.
func (m *Manager) Stop() {
	m.sched.Stop()
}

// Create persists a battle for a confirmed matchmaking pairing and primes
// its snapshot.
func (m *Manager) Create(ctx context.Context, roomID, ticket1, ticket2 string, gameModeID int64) (*model.Battle, error) {
	mode, err := m.store.ModeByID(ctx, gameModeID)
	if err != nil {
		return nil, fmt.Errorf("resolve game mode %d: %w", gameModeID, err)
	}
	b, err := Create(ctx, m.store, roomID, ticket1, ticket2, mode)
	if err != nil {
		return nil, err
	}
	if err := m.cache.SetSnapshot(ctx, roomID, cache.NewSnapshot()); err != nil {
		return nil, err
	}
	m.logger.Info("battle created",
		zap.String("room_id", roomID),
		zap.Int64("battle_id", b.ID),
		zap.Int("first_turn_idx", b.FirstTurnIdx),
	)
	return b, nil
}

// withBattle runs fn against a freshly loaded runtime under the battle lock,
// then persists the snapshot and flushes the event log. This is the single
// entry path for every player intent and timer job.
func (m *Manager) withBattle(ctx context.Context, roomID string, originPlayerID int64, fn func(rt *Runtime) error) error {
	release, err := m.cache.Lock(ctx, roomID)
	if err != nil {
		return err
	}
	defer release()

	rt, err := m.load(ctx, roomID)
	if err != nil {
		return err
	}
	prevState := rt.State.Battle.State
	prevTurnNumber, prevTurnIdx := rt.State.Battle.TurnNumber, rt.State.Battle.TurnIdx

	actionErr := fn(rt)
	if actionErr != nil {
		var verr *ValidationError
		if errors.As(actionErr, &verr) {
			// Bad intents bounce back to the originator only; state was not
			// touched.
			rt.State.Events.Reset()
			m.notifier.Deliver(roomID, originPlayerID, []Event{{
				Type: EventError,
				Payload: map[string]any{
					"code":    verr.Code,
					"message": verr.Message,
				},
			}})
			return nil
		}
		m.logger.Error("battle action failed",
			zap.String("room_id", roomID),
			zap.Int64("player_id", originPlayerID),
			zap.Error(actionErr),
		)
		rt.State.Events.Reset()
		if originPlayerID != 0 {
			m.notifier.Deliver(roomID, originPlayerID, []Event{{
				Type:    EventError,
				Payload: map[string]any{"code": "internal", "message": "action could not be processed"},
			}})
		}
		return actionErr
	}

	if err := m.cache.SetSnapshot(ctx, roomID, rt.State.Snapshot); err != nil {
		return err
	}
	m.flush(roomID, rt)
	m.afterAction(ctx, roomID, rt, prevState, prevTurnNumber, prevTurnIdx)
	return nil
}

// flush partitions the event log per seat and delivers each batch in record
// order, then clears the log.
func (m *Manager) flush(roomID string, rt *Runtime) {
	for _, side := range rt.State.Sides {
		if side == nil {
			continue
		}
		if batch := rt.State.Events.ForSeat(side.Idx()); len(batch) > 0 {
			m.notifier.Deliver(roomID, side.Player.PlayerID, batch)
		}
	}
	rt.State.Events.Reset()
}

// afterAction reschedules or cancels timers based on where the action left
// the battle. The turn timer runs once per turn: it is armed when the battle
// starts and when the turn moves, never on in-turn actions, so acting cannot
// stretch the clock.
func (m *Manager) afterAction(ctx context.Context, roomID string, rt *Runtime, prevState model.BattleState, prevTurnNumber, prevTurnIdx int) {
	b := rt.State.Battle
	if b.State.IsTerminal() {
		m.sched.CancelPrefix("turn:" + roomID)
		m.sched.Cancel("duration:" + roomID)
		if err := m.cache.DeleteSnapshot(ctx, roomID); err != nil {
			m.logger.Error("failed to drop snapshot of finished battle",
				zap.String("room_id", roomID), zap.Error(err))
		}
		m.notifier.Teardown(roomID)
		return
	}
	if b.State != model.BattleActive && b.State != model.BattleAwaitingReconnect {
		return
	}
	started := prevState == model.BattleClosed && b.State == model.BattleActive
	turnMoved := b.TurnNumber != prevTurnNumber || b.TurnIdx != prevTurnIdx
	if started || turnMoved {
		m.scheduleTurnTimer(roomID, rt)
	}
}

func (m *Manager) scheduleTurnTimer(roomID string, rt *Runtime) {
	b := rt.State.Battle
	turnNumber, turnIdx := b.TurnNumber, b.TurnIdx
	d := time.Duration(rt.State.Mode.BattlefieldTimerDuration) * time.Second
	m.sched.Schedule("turn:"+roomID, d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := m.withBattle(ctx, roomID, 0, func(rt *Runtime) error {
			return rt.EndTurnIfCurrent(ctx, turnNumber, turnIdx)
		})
		if err != nil {
			m.logger.Error("turn timer failed",
				zap.String("room_id", roomID), zap.Error(err))
		}
	})
}

func (m *Manager) scheduleDurationTimer(roomID string, rt *Runtime) {
	d := time.Duration(rt.State.Mode.BattleDuration) * time.Second
	if d <= 0 {
		return
	}
	m.sched.Schedule("duration:"+roomID, d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := m.withBattle(ctx, roomID, 0, func(rt *Runtime) error {
			return rt.ExpireDuration(ctx)
		})
		if err != nil {
			m.logger.Error("duration timer failed",
				zap.String("room_id", roomID), zap.Error(err))
		}
	})
}

// load rebuilds the full runtime for one handled message: battle, mode,
// seats, collections and the cached snapshot.
func (m *Manager) load(ctx context.Context, roomID string) (*Runtime, error) {
	b, err := m.store.BattleByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("load battle %s: %w", roomID, err)
	}
	mode, err := m.store.ModeByID(ctx, b.GameModeID)
	if err != nil {
		return nil, fmt.Errorf("load mode for battle %s: %w", roomID, err)
	}

	st := &State{Battle: b, Mode: mode, Events: &EventLog{}}

	players, err := m.store.PlayersByBattle(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		side := &Side{Player: p}
		if side.Deck, err = m.store.DeckByPlayer(ctx, p.ID); err != nil {
			return nil, err
		}
		if side.Hand, err = m.store.HandByPlayer(ctx, p.ID); err != nil {
			return nil, err
		}
		if side.Graveyard, err = m.store.GraveyardByPlayer(ctx, p.ID); err != nil {
			return nil, err
		}
		if side.Mysteries, err = m.store.MysteriesByPlayer(ctx, p.ID); err != nil {
			return nil, err
		}
		if side.Tiles, err = m.store.TilesByPlayer(ctx, p.ID); err != nil {
			return nil, err
		}
		st.Sides[p.Idx-1] = side
	}

	snap, err := m.cache.GetSnapshot(ctx, roomID)
	if errors.Is(err, cache.ErrSnapshotMissing) {
		snap = cache.NewSnapshot()
	} else if err != nil {
		return nil, err
	}
	st.Snapshot = snap

	return NewRuntime(st, m.store, enchant.NewEngine(m.enchStore), m.cfg, m.logger.With(
		zap.String("room_id", roomID),
		zap.Int64("battle_id", b.ID),
	)), nil
}

// HandleJoin attaches or reattaches a player. The second attach deals and
// starts the battle; a reattach during a grace period cancels the pending
// disconnect completion.
func (m *Manager) HandleJoin(ctx context.Context, roomID string, playerID int64, ticket string) error {
	return m.withBattle(ctx, roomID, playerID, func(rt *Runtime) error {
		b := rt.State.Battle
		if SeatTicket(b, ticket) == 0 {
			return Invalid("bad_ticket", "ticket does not belong to this battle")
		}

		if existing := rt.State.SideByPlayerID(playerID); existing != nil {
			// Reconnect path: invalidate the pending grace episode.
			if err := m.cache.DeleteReconnectToken(ctx, b.ID, playerID); err != nil {
				return err
			}
			return rt.MarkReconnected(ctx, playerID)
		}

		if _, err := rt.AttachPlayer(ctx, playerID, m.cfg); err != nil {
			return err
		}
		if b.State != model.BattleClosed {
			return nil
		}

		opts := StartOptions{}
		if !rt.State.Mode.IsRandomGeneratedDeck {
			if m.decks == nil {
				return fmt.Errorf("mode %s needs custom decks but no deck provider is wired", rt.State.Mode.CustomID)
			}
			opts.CustomDecks = make(map[int64][]*model.Card, 2)
			for _, side := range rt.State.Sides {
				deck, err := m.decks.DeckFor(ctx, side.Player.PlayerID, rt.State.Mode)
				if err != nil {
					return err
				}
				opts.CustomDecks[side.Player.PlayerID] = deck
			}
		}
		if err := rt.Start(ctx, opts); err != nil {
			return err
		}
		m.scheduleDurationTimer(roomID, rt)
		return nil
	})
}

// HandlePlayCard resolves a play-card intent.
func (m *Manager) HandlePlayCard(ctx context.Context, roomID string, playerID int64, intent PlayCardIntent) error {
	return m.withBattle(ctx, roomID, playerID, func(rt *Runtime) error {
		return rt.PlayCard(ctx, playerID, intent)
	})
}

// HandleAttack resolves an attack intent.
func (m *Manager) HandleAttack(ctx context.Context, roomID string, playerID int64, intent AttackIntent) error {
	return m.withBattle(ctx, roomID, playerID, func(rt *Runtime) error {
		return rt.Attack(ctx, playerID, intent)
	})
}

// HandleEndTurn resolves a client end-turn.
func (m *Manager) HandleEndTurn(ctx context.Context, roomID string, playerID int64) error {
	return m.withBattle(ctx, roomID, playerID, func(rt *Runtime) error {
		return rt.EndTurn(ctx, playerID)
	})
}

// HandleSurrender resolves a surrender.
func (m *Manager) HandleSurrender(ctx context.Context, roomID string, playerID int64) error {
	return m.withBattle(ctx, roomID, playerID, func(rt *Runtime) error {
		return rt.Surrender(ctx, playerID)
	})
}

// HandleDisconnect starts a reconnect grace episode for the player. Only the
// grace timer holding the latest episode token may complete the battle.
func (m *Manager) HandleDisconnect(ctx context.Context, roomID string, playerID int64) error {
	token := uuid.NewString()
	return m.withBattle(ctx, roomID, playerID, func(rt *Runtime) error {
		b := rt.State.Battle
		if !b.State.IsActive() {
			return nil
		}
		if err := rt.MarkDisconnected(ctx, playerID); err != nil {
			return err
		}
		if err := m.cache.SetReconnectToken(ctx, b.ID, playerID, token, m.cfg.ReconnectGrace+time.Minute); err != nil {
			return err
		}
		battleID := b.ID
		m.sched.Schedule(fmt.Sprintf("grace:%s:%d", roomID, playerID), m.cfg.ReconnectGrace, func() {
			m.fireGraceTimer(roomID, battleID, playerID, token)
		})
		return nil
	})
}

// fireGraceTimer completes the battle for a player who never reconnected,
// unless a later disconnect episode or a reconnect superseded this one.
func (m *Manager) fireGraceTimer(roomID string, battleID, playerID int64, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := m.withBattle(ctx, roomID, 0, func(rt *Runtime) error {
		current, err := m.cache.GetReconnectToken(ctx, battleID, playerID)
		if err != nil {
			return err
		}
		if current != token {
			// Reconnected, or a fresher disconnect episode owns the outcome.
			return nil
		}
		if err := m.cache.DeleteReconnectToken(ctx, battleID, playerID); err != nil {
			return err
		}
		return rt.CompleteByDisconnect(ctx, playerID)
	})
	if err != nil {
		m.logger.Error("grace timer failed",
			zap.String("room_id", roomID),
			zap.Int64("player_id", playerID),
			zap.Error(err),
		)
	}
}
