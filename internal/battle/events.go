package battle

// EventType tags one outbound game event.
type EventType string

const (
	EventBattleStart         EventType = "battle_start"
	EventStartTurn           EventType = "start_turn"
	EventEndTurn             EventType = "end_turn"
	EventDrawCards           EventType = "draw_cards"
	EventPlayCard            EventType = "play_card"
	EventCardUpdate          EventType = "card_update"
	EventMinionAttack        EventType = "minion_attack"
	EventMinionDamage        EventType = "minion_damage"
	EventMinionDestroy       EventType = "minion_destroy"
	EventPlayerAttack        EventType = "player_attack"
	EventPlayerDamage        EventType = "player_damage"
	EventPlayerHeal          EventType = "player_heal"
	EventPlayerDestroy       EventType = "player_destroy"
	EventEndBattle           EventType = "end_battle"
	EventNextCardInDeck      EventType = "next_card_in_deck"
	EventTileUpdateElement   EventType = "tile_update_element"
	EventTileUpdateState     EventType = "tile_update_state"
	EventEnchantmentApplied  EventType = "enchantment_applied"
	EventEnchantmentRemoved  EventType = "enchantment_removed"
	EventMysteryActivated    EventType = "mystery_card_activated"
	EventOpponentDisconnected EventType = "opponent_disconnected"
	EventOpponentReconnected  EventType = "opponent_reconnected"
	EventError               EventType = "error"
)

// Event is one entry in the per-action event log. Visibility defaults to
// broadcast; at most one of the two restriction flags is set.
type Event struct {
	Type           EventType      `json:"type"`
	Payload        map[string]any `json:"payload,omitempty"`
	ToPlayerOnly   bool           `json:"-"`
	ToOpponentOnly bool           `json:"-"`
	// OriginIdx is the seat whose action produced the event; visibility
	// flags are interpreted relative to it.
	OriginIdx int `json:"-"`
}

// EventLog collects the flat, time-ordered event sequence of one player
// action and its full trigger cascade. It is created per action and flushed
// exactly once.
type EventLog struct {
	events []Event
}

// Record appends an event visible to both sides.
func (l *EventLog) Record(originIdx int, typ EventType, payload map[string]any) {
	l.events = append(l.events, Event{Type: typ, Payload: payload, OriginIdx: originIdx})
}

// RecordPlayerOnly appends an event visible only to the acting seat.
func (l *EventLog) RecordPlayerOnly(originIdx int, typ EventType, payload map[string]any) {
	l.events = append(l.events, Event{Type: typ, Payload: payload, OriginIdx: originIdx, ToPlayerOnly: true})
}

// RecordOpponentOnly appends an event visible only to the acting seat's
// opponent.
func (l *EventLog) RecordOpponentOnly(originIdx int, typ EventType, payload map[string]any) {
	l.events = append(l.events, Event{Type: typ, Payload: payload, OriginIdx: originIdx, ToOpponentOnly: true})
}

// Events returns the recorded sequence in order.
func (l *EventLog) Events() []Event {
	return l.events
}

// ForSeat partitions the log for one recipient seat, preserving record order.
func (l *EventLog) ForSeat(idx int) []Event {
	var out []Event
	for _, ev := range l.events {
		switch {
		case ev.ToPlayerOnly && ev.OriginIdx != idx:
			continue
		case ev.ToOpponentOnly && ev.OriginIdx == idx:
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Reset clears the log after a flush.
func (l *EventLog) Reset() {
	l.events = l.events[:0]
}

// Contains reports whether an event of the given type was recorded. The
// trigger pipeline uses it to match reactive hooks.
func (l *EventLog) Contains(typ EventType) bool {
	for _, ev := range l.events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}
