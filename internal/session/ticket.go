package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketClaims is the signed join ticket minted by matchmaking: it binds a
// player identity to one battle room.
type TicketClaims struct {
	PlayerID int64  `json:"player_id"`
	RoomID   string `json:"room_id"`
	// Ticket is the per-seat battle ticket checked against the battle record.
	Ticket string `json:"ticket"`
	jwt.RegisteredClaims
}

// TicketCodec signs and verifies join tickets with the secret shared with
// the matchmaking service.
type TicketCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTicketCodec builds a codec from the configured shared secret.
func NewTicketCodec(secret string, ttl time.Duration) *TicketCodec {
	return &TicketCodec{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed join ticket.
func (c *TicketCodec) Issue(playerID int64, roomID, ticket string) (string, error) {
	now := time.Now()
	claims := TicketClaims{
		PlayerID: playerID,
		RoomID:   roomID,
		Ticket:   ticket,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a presented join ticket.
func (c *TicketCodec) Verify(token string) (*TicketClaims, error) {
	var claims TicketClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verify ticket: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid ticket")
	}
	return &claims, nil
}
