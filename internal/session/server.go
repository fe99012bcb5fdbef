package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/config"
)

// Creator is the matchmaking-facing slice of the battle manager: it
// persists a confirmed pairing as a joinable battle.
type Creator interface {
	Create(ctx context.Context, roomID, ticket1, ticket2 string, gameModeID int64) error
}

// Server exposes the websocket battle endpoint and the matchmaking-facing
// battle creation endpoint.
type Server struct {
	httpServer *http.Server
	hub        *Hub
	engine     Engine
	creator    Creator
	tickets    *TicketCodec
	upgrader   websocket.Upgrader
	cfg        config.ServerConfig
	logger     *zap.Logger
}

// NewServer wires the session server.
func NewServer(cfg config.ServerConfig, hub *Hub, engine Engine, creator Creator, tickets *TicketCodec, logger *zap.Logger) *Server {
	s := &Server{
		hub:     hub,
		engine:  engine,
		creator: creator,
		tickets: tickets,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		cfg:    cfg,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/battle", s.handleBattleSocket)
	mux.HandleFunc("/battles", s.handleCreateBattle)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: 0, // websocket writes manage their own deadlines
	}
	return s
}

// ListenAndServe blocks serving connections.
func (s *Server) ListenAndServe() error {
	s.logger.Info("session server listening", zap.String("address", s.cfg.Address))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains the http server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleBattleSocket authenticates the join ticket and hands the connection
// to its client actor.
func (s *Server) handleBattleSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("ticket")
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing ticket")
		return
	}
	claims, err := s.tickets.Verify(token)
	if err != nil {
		s.logger.Warn("rejected connection with bad ticket", zap.Error(err))
		writeJSONError(w, http.StatusUnauthorized, "invalid ticket")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	logger := s.logger.With(
		zap.String("room_id", claims.RoomID),
		zap.Int64("player_id", claims.PlayerID),
	)
	client := newClient(s.hub, s.engine, conn, claims, s.cfg.PingInterval, s.cfg.WriteTimeout, logger)
	go client.run(context.Background())
}

// createBattleRequest is the matchmaking payload for a confirmed pairing.
type createBattleRequest struct {
	RoomID     string `json:"room_id"`
	GameModeID int64  `json:"game_mode_id"`
	Player1    struct {
		PlayerID int64  `json:"player_id"`
		Ticket   string `json:"ticket"`
	} `json:"player1"`
	Player2 struct {
		PlayerID int64  `json:"player_id"`
		Ticket   string `json:"ticket"`
	} `json:"player2"`
}

// handleCreateBattle persists a battle for a matchmaking pairing and returns
// the signed join tickets both players connect with.
func (s *Server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req createBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if req.RoomID == "" || req.Player1.Ticket == "" || req.Player2.Ticket == "" {
		writeJSONError(w, http.StatusBadRequest, "room_id and both tickets are required")
		return
	}

	if err := s.creator.Create(r.Context(), req.RoomID, req.Player1.Ticket, req.Player2.Ticket, req.GameModeID); err != nil {
		s.logger.Error("battle creation failed",
			zap.String("room_id", req.RoomID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "battle creation failed")
		return
	}

	join1, err := s.tickets.Issue(req.Player1.PlayerID, req.RoomID, req.Player1.Ticket)
	if err == nil {
		var join2 string
		join2, err = s.tickets.Issue(req.Player2.PlayerID, req.RoomID, req.Player2.Ticket)
		if err == nil {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"room_id":       req.RoomID,
				"player1_token": join1,
				"player2_token": join2,
			})
			return
		}
	}
	s.logger.Error("ticket signing failed", zap.Error(err))
	writeJSONError(w, http.StatusInternalServerError, "ticket signing failed")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
