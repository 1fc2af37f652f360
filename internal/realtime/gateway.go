package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/chat"
	"github.com/classpulse/backend/internal/events"
	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/registry"
	"github.com/classpulse/backend/internal/session"
)

// dispatchTimeout bounds the persistence work of a single inbound event.
const dispatchTimeout = 10 * time.Second

// Gateway translates inbound client events into registry, coordinator, and
// chat calls, and reports every rejected command back to its originator as
// exactly one error_message.
type Gateway struct {
	hub         *Hub
	registry    *registry.Registry
	coordinator *session.Coordinator
	chats       chat.Store
	logger      *zap.Logger
}

// NewGateway creates the event gateway.
func NewGateway(hub *Hub, reg *registry.Registry, coordinator *session.Coordinator, chats chat.Store, logger *zap.Logger) *Gateway {
	return &Gateway{
		hub:         hub,
		registry:    reg,
		coordinator: coordinator,
		chats:       chats,
		logger:      logger,
	}
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func (g *Gateway) ServeWs() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			g.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:      uuid.New().String(),
			hub:     g.hub,
			gateway: g,
			conn:    conn,
			send:    make(chan WSMessage, 256),
			logger:  g.logger,
		}
		g.hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (g *Gateway) sendError(c *Client, msg string) {
	g.hub.SendTo(c.ID, events.ErrorMessage, events.MessagePayload{Message: msg})
}

func (g *Gateway) dispatch(c *Client, msg WSMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	switch msg.Event {
	case events.Join:
		g.handleJoin(ctx, c, msg.Data)
	case events.CreatePoll:
		g.handleCreatePoll(ctx, c, msg.Data)
	case events.SubmitAnswer:
		g.handleSubmitAnswer(ctx, c, msg.Data)
	case events.EndPoll:
		if err := g.coordinator.EndPoll(ctx, c.ID); err != nil {
			g.sendError(c, err.Error())
		}
	case events.SendMessage:
		g.handleSendMessage(ctx, c, msg.Data)
	case events.KickStudent:
		g.handleKick(c, msg.Data)
	default:
		// ignore
	}
}

func (g *Gateway) handleJoin(ctx context.Context, c *Client, data json.RawMessage) {
	var payload events.JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(c, "Name and role are required")
		return
	}
	role := models.Role(payload.Role)
	if payload.Name == "" || !role.Valid() {
		g.sendError(c, "Name and role are required")
		return
	}

	if err := g.registry.Join(c.ID, payload.Name, role); err != nil {
		g.sendError(c, err.Error())
		return
	}

	g.hub.SendTo(c.ID, events.Joined, events.JoinedPayload{ID: c.ID, Name: payload.Name, Role: role})
	g.hub.Broadcast(events.ParticipantsUpdated, g.registry.ListAll())
	g.coordinator.HandleJoin(ctx, c.ID, role)

	g.logger.Info("participant joined",
		zap.String("conn_id", c.ID),
		zap.String("name", payload.Name),
		zap.String("role", string(role)),
	)
}

func (g *Gateway) handleCreatePoll(ctx context.Context, c *Client, data json.RawMessage) {
	var payload events.CreatePollPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(c, "Invalid request payload")
		return
	}
	if err := g.coordinator.CreatePoll(ctx, c.ID, payload.Question, payload.Options, payload.TimerSeconds); err != nil {
		g.sendError(c, err.Error())
	}
}

func (g *Gateway) handleSubmitAnswer(ctx context.Context, c *Client, data json.RawMessage) {
	var payload events.SubmitAnswerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(c, "Invalid request payload")
		return
	}
	if err := g.coordinator.SubmitAnswer(ctx, c.ID, payload.PollID, payload.OptionIndex); err != nil {
		g.sendError(c, err.Error())
	}
}

func (g *Gateway) handleSendMessage(ctx context.Context, c *Client, data json.RawMessage) {
	sender := g.registry.Get(c.ID)
	if sender == nil {
		g.sendError(c, "You must join first")
		return
	}
	var payload events.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(c, "Invalid request payload")
		return
	}
	m, err := g.chats.Append(ctx, sender.Name, c.ID, payload.Message)
	if err != nil {
		g.sendError(c, err.Error())
		return
	}
	g.hub.Broadcast(events.NewChatMessage, m)
}

// handleKick enforces the notify-then-remove-then-disconnect ordering: the
// target gets the kicked event while still registered, then the registry
// entry goes, then the transport is severed.
func (g *Gateway) handleKick(c *Client, data json.RawMessage) {
	var payload events.KickStudentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(c, "Invalid request payload")
		return
	}
	_, err := g.registry.Kick(c.ID, payload.TargetID, func(target *models.Participant) {
		g.hub.SendTo(target.ID, events.Kicked, struct{}{})
	})
	if err != nil {
		g.sendError(c, err.Error())
		return
	}
	g.hub.CloseClient(payload.TargetID)
	g.hub.Broadcast(events.ParticipantsUpdated, g.registry.ListAll())
}

// handleDisconnect runs when a connection drops for any reason.
func (g *Gateway) handleDisconnect(c *Client) {
	if g.registry.Get(c.ID) == nil {
		return
	}
	g.registry.Leave(c.ID)
	g.hub.Broadcast(events.ParticipantsUpdated, g.registry.ListAll())
}
