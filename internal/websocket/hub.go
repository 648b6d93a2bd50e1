package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bpadilla17/radladder-game/internal/game"
	"github.com/bpadilla17/radladder-game/internal/models"
	"github.com/bpadilla17/radladder-game/internal/service"
	"github.com/bpadilla17/radladder-game/pkg/metrics"
)

// Games is the game service as seen by the hub.
type Games interface {
	Session(sessionID string) (*game.Session, error)
	Snapshot(ctx context.Context, session *game.Session) game.Snapshot
	SubmitAnswer(ctx context.Context, sessionID, option string) (game.Feedback, error)
	Next(ctx context.Context, sessionID string) error
	UsePass(ctx context.Context, sessionID string) error
	UseAskAudience(ctx context.Context, sessionID string) (*models.AudienceStats, error)
	ResumeAudience(sessionID string) error
	UseSafetyNet(sessionID string) error
	Abandon(ctx context.Context, sessionID string) (game.Snapshot, error)
}

type ClientMessage struct {
	Client  *Client
	Message InboundMessage
}

// Hub tracks the connections of every session. Registration and commands are
// handled one at a time on the Run goroutine; session events are broadcast
// from whichever goroutine emits them.
type Hub struct {
	clients       map[string]map[*Client]bool
	Register      chan *Client
	Unregister    chan *Client
	HandleMessage chan *ClientMessage

	games Games

	mu   sync.RWMutex
	done chan struct{}
}

func NewHub(games Games) *Hub {
	return &Hub{
		clients:       make(map[string]map[*Client]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		HandleMessage: make(chan *ClientMessage),
		games:         games,
		done:          make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.HandleMessage:
			h.handleClientMessage(clientMsg)
		}
	}
}

// PublishEvent forwards a session event to the session's connections. It is
// registered as a game service listener.
func (h *Hub) PublishEvent(ev game.Event) {
	msgType, ok := eventMessages[ev.Type]
	if !ok {
		return
	}
	h.broadcastToSession(ev.SessionID, msgType, ev.Payload)
}

func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.SessionID] == nil {
		h.clients[client.SessionID] = make(map[*Client]bool)
	}
	h.clients[client.SessionID][client] = true
	h.mu.Unlock()
	metrics.WebSocketConnections.Inc()

	log.Printf("Client registered: session=%s, player=%s", client.SessionID, client.PlayerName)

	session, err := h.games.Session(client.SessionID)
	if err != nil {
		client.SendError("Game session not found", ErrorCode(err))
		return
	}
	client.SendMessage(MessageTypeConnected, ConnectedPayload{
		Session: h.games.Snapshot(context.Background(), session),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.SessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			client.close()
			metrics.WebSocketConnections.Dec()

			if len(clients) == 0 {
				delete(h.clients, client.SessionID)
			}

			log.Printf("Client unregistered: session=%s", client.SessionID)
		}
	}
}

func (h *Hub) handleClientMessage(clientMsg *ClientMessage) {
	client := clientMsg.Client
	msg := clientMsg.Message
	ctx := context.Background()
	id := client.SessionID

	var err error
	switch msg.Type {
	case MessageTypeAnswer:
		var payload AnswerPayload
		if jsonErr := json.Unmarshal(msg.Payload, &payload); jsonErr != nil {
			client.SendError("Invalid answer payload", "bad_request")
			return
		}
		_, err = h.games.SubmitAnswer(ctx, id, payload.Option)

	case MessageTypePass:
		err = h.games.UsePass(ctx, id)

	case MessageTypeAskAudience:
		_, err = h.games.UseAskAudience(ctx, id)

	case MessageTypeCloseAudience:
		err = h.games.ResumeAudience(id)

	case MessageTypeSafetyNet:
		err = h.games.UseSafetyNet(id)

	case MessageTypeNext:
		err = h.games.Next(ctx, id)

	case MessageTypeAbandon:
		_, err = h.games.Abandon(ctx, id)

	case MessageTypeState:
		var session *game.Session
		if session, err = h.games.Session(id); err == nil {
			client.SendMessage(MessageTypeConnected, ConnectedPayload{Session: h.games.Snapshot(ctx, session)})
		}

	case MessageTypePing:
		client.SendMessage(MessageTypePong, nil)

	default:
		client.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type), "bad_request")
	}

	if err != nil {
		client.SendError(err.Error(), ErrorCode(err))
		if game.IsFatal(err) {
			h.closeSession(id)
		}
	}
}

// closeSession drops every connection of a session that can no longer be
// played. Queued messages are still flushed by the write pumps.
func (h *Hub) closeSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[sessionID] {
		client.close()
		metrics.WebSocketConnections.Dec()
	}
	delete(h.clients, sessionID)
}

func (h *Hub) broadcastToSession(sessionID string, msgType MessageType, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[sessionID] {
		client.SendMessage(msgType, payload)
	}
}

// Attach registers a connected client. It reports false once the hub has
// stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// dispatch hands a command to the Run loop. It reports false once the hub
// has stopped.
func (h *Hub) dispatch(msg *ClientMessage) bool {
	select {
	case h.HandleMessage <- msg:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for sessionID, clients := range h.clients {
		for client := range clients {
			client.close()
			metrics.WebSocketConnections.Dec()
		}
		delete(h.clients, sessionID)
	}
}

// ErrorCode classifies gameplay errors for clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, game.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, game.ErrPaused):
		return "paused"
	case errors.Is(err, game.ErrInvalidOption):
		return "invalid_option"
	case errors.Is(err, game.ErrNoPassesRemaining):
		return "no_passes_remaining"
	case errors.Is(err, game.ErrLifelineUsed):
		return "lifeline_used"
	case game.IsFatal(err):
		return "unavailable"
	default:
		return "internal"
	}
}
