package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ChatCRM/entity"
	"ChatCRM/internal/lib/sl"
)

// Store is the slice of the repository the chat core needs. Membership is
// always re-read at delivery time so a subscription can never outlive it.
type Store interface {
	GetUserByID(ctx context.Context, userID string) (*entity.User, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]entity.ChatRoom, error)
	ListRoomMembers(ctx context.Context, roomID string) ([]string, error)
	GetRoomByID(ctx context.Context, roomID string) (*entity.ChatRoom, error)
	CreateMessage(ctx context.Context, roomID, authorID, body string, att *entity.Attachment) (*entity.ChatMessage, error)
}

// Identifier values some clients send when they have no real identity.
// Connections presenting them are rejected before any subscription exists.
func isSentinelID(id string) bool {
	switch id {
	case "", "null", "undefined", "None":
		return true
	}
	return false
}

// Router owns connection lifecycle and event dispatch: it decides which
// channels a connection joins, who receives each inbound event, and keeps
// the presence snapshot consistent with its broadcasts.
type Router struct {
	registry Registry
	presence *Presence
	store    Store
	log      *slog.Logger

	// Serializes presence mutation with the snapshot broadcast so two
	// concurrent joins cannot publish snapshots out of order.
	presenceMu sync.Mutex
}

// NewRouter wires the router over a channel registry, a presence set and
// the durable store.
func NewRouter(registry Registry, presence *Presence, store Store, log *slog.Logger) *Router {
	return &Router{
		registry: registry,
		presence: presence,
		store:    store,
		log:      log.With(sl.Module("ws")),
	}
}

// Connect runs the join sequence for a fresh connection: resolve the
// identity, subscribe to the personal inbox, the presence feed and a
// snapshot of the user's rooms, then mark the user online and broadcast
// the updated presence list. The caller accepts the socket only after
// Connect returns nil.
func (r *Router) Connect(ctx context.Context, visitorID string, sub Subscriber) (*entity.User, error) {
	if isSentinelID(visitorID) {
		return nil, fmt.Errorf("rejecting sentinel identity %q", visitorID)
	}

	user, err := r.store.GetUserByID(ctx, visitorID)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	r.registry.Subscribe(UserChannel(user.UserID), sub)
	r.registry.Subscribe(PresenceChannel, sub)

	rooms, err := r.store.ListRoomsForUser(ctx, user.UserID)
	if err != nil {
		r.registry.DropSubscriber(sub)
		return nil, fmt.Errorf("room snapshot: %w", err)
	}
	for _, room := range rooms {
		r.registry.Subscribe(RoomChannel(room.RoomID), sub)
	}

	r.MarkOnline(user.UserID)
	r.log.Info("connection joined",
		slog.String("user", user.UserID),
		slog.Int("rooms", len(rooms)),
	)
	return user, nil
}

// Disconnect tears down one connection: every subscription goes, the user
// is marked offline and the presence change is broadcast.
func (r *Router) Disconnect(userID string, sub Subscriber) {
	r.registry.DropSubscriber(sub)
	r.MarkOffline(userID)
	r.log.Info("connection left", slog.String("user", userID))
}

// MarkOnline adds the user to the presence set and broadcasts the snapshot.
// Marking an already-online user is idempotent but still re-broadcasts, so
// a reconnecting client always sees a fresh list.
func (r *Router) MarkOnline(userID string) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()
	r.presence.Add(userID)
	r.broadcastPresenceLocked()
}

// MarkOffline removes the user from the presence set and broadcasts.
func (r *Router) MarkOffline(userID string) {
	r.presenceMu.Lock()
	defer r.presenceMu.Unlock()
	r.presence.Remove(userID)
	r.broadcastPresenceLocked()
}

func (r *Router) broadcastPresenceLocked() {
	payload := entity.PresencePayload{
		Action:   entity.ActionOnlineUser,
		UserList: r.presence.Snapshot(),
	}
	data, err := json.Marshal(entity.Envelope{Type: entity.EnvelopeType, Message: payload})
	if err != nil {
		r.log.Error("marshal presence payload", sl.Err(err))
		return
	}
	r.registry.Publish(PresenceChannel, data)
}

// RouteEvent dispatches one inbound socket event from an authenticated
// connection. Unknown actions fall back to a room broadcast; a malformed
// frame is dropped with a warning, never fatal to the connection.
func (r *Router) RouteEvent(ctx context.Context, sender *entity.User, sub Subscriber, raw []byte) {
	var event entity.ChatEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		r.log.Warn("dropping malformed event",
			slog.String("user", sender.UserID),
			sl.Err(err),
		)
		return
	}

	switch event.Action {
	case entity.ActionJoinRoom:
		r.handleJoinRoom(sender, sub, &event)
	case entity.ActionMessage:
		r.handleMessage(ctx, sender, &event)
	case entity.ActionSupportUpdate:
		r.BroadcastSupportUpdate(event.RoomID)
	case entity.ActionTyping:
		r.broadcastToRoom(event.RoomID, raw)
	default:
		// Unrecognized actions relay to the room like typing does.
		r.log.Warn("unknown event action, relaying to room",
			slog.String("action", event.Action),
			slog.String("user", sender.UserID),
		)
		r.broadcastToRoom(event.RoomID, raw)
	}
}

// handleJoinRoom subscribes the connection to a room channel on request.
// Membership is deliberately not checked: agents observe support rooms
// before taking them, and room broadcasts carry only ephemeral payloads.
// Chat messages stay member-targeted regardless of who subscribed here.
func (r *Router) handleJoinRoom(sender *entity.User, sub Subscriber, event *entity.ChatEvent) {
	if event.RoomID == "" {
		return
	}
	r.registry.Subscribe(RoomChannel(event.RoomID), sub)
	r.log.Debug("joined room channel",
		slog.String("user", sender.UserID),
		slog.String("room", event.RoomID),
	)
}

// handleMessage persists the message (unless it was already stored by the
// upload endpoint) and delivers it to each member's personal channel.
// Messages are never broadcast to the room channel: membership at delivery
// time is the routing truth, not the subscription set.
func (r *Router) handleMessage(ctx context.Context, sender *entity.User, event *entity.ChatEvent) {
	if event.RoomID == "" {
		r.log.Warn("message without room dropped", slog.String("user", sender.UserID))
		return
	}

	payload := entity.MessagePayload{
		Action:    entity.ActionMessage,
		User:      event.User,
		UserID:    sender.UserID,
		RoomID:    event.RoomID,
		Message:   event.Message,
		UserName:  event.UserName,
		UserImage: event.UserImage,
		Image:     event.Image,
		File:      event.File,
		FileName:  event.FileName,
		FileType:  event.FileType,
		FileSize:  event.FileSize,
		Kind:      event.Kind,
	}

	if event.FromUpload {
		// Upload endpoint already persisted the message; this frame only
		// asks for delivery.
		payload.Timestamp = time.Now().UTC().Format(time.RFC3339)
	} else {
		msg, err := r.store.CreateMessage(ctx, event.RoomID, sender.UserID, event.Message, nil)
		if err != nil {
			r.log.Error("persist message",
				slog.String("user", sender.UserID),
				slog.String("room", event.RoomID),
				sl.Err(err),
			)
			return
		}
		payload.Timestamp = msg.Timestamp.Format(time.RFC3339)
		payload.Kind = msg.Kind
	}

	if room, err := r.store.GetRoomByID(ctx, event.RoomID); err == nil {
		payload.ChatType = room.Type
	}

	if _, err := r.FanOut(ctx, event.RoomID, payload); err != nil {
		r.log.Error("fan out message", slog.String("room", event.RoomID), sl.Err(err))
	}
}

// FanOut delivers one payload to the personal channel of every current
// member of the room and returns the number of live deliveries. An unknown
// room has zero members and zero deliveries, never an error.
func (r *Router) FanOut(ctx context.Context, roomID string, payload entity.MessagePayload) (int, error) {
	members, err := r.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		return 0, fmt.Errorf("resolve members: %w", err)
	}

	data, err := json.Marshal(entity.Envelope{Type: entity.EnvelopeType, Message: payload})
	if err != nil {
		return 0, fmt.Errorf("marshal payload: %w", err)
	}

	delivered := 0
	for _, memberID := range members {
		delivered += r.registry.Publish(UserChannel(memberID), data)
	}
	r.log.Debug("message delivered",
		slog.String("room", roomID),
		slog.Int("members", len(members)),
		slog.Int("delivered", delivered),
	)
	return delivered, nil
}

// BroadcastSupportUpdate tells every connection that a support room changed
// state so agent queues refresh.
func (r *Router) BroadcastSupportUpdate(roomID string) {
	payload := entity.SupportUpdatePayload{
		Action: entity.ActionSupportUpdate,
		RoomID: roomID,
	}
	data, err := json.Marshal(entity.Envelope{Type: entity.EnvelopeType, Message: payload})
	if err != nil {
		r.log.Error("marshal support update", sl.Err(err))
		return
	}
	r.registry.Publish(PresenceChannel, data)
}

// broadcastToRoom relays the inbound frame unchanged, wrapped in the
// outbound envelope, to everyone subscribed to the room channel. Used for
// typing indicators and unrecognized actions; nothing is persisted.
func (r *Router) broadcastToRoom(roomID string, raw []byte) {
	if roomID == "" {
		return
	}
	data, err := json.Marshal(entity.Envelope{Type: entity.EnvelopeType, Message: json.RawMessage(raw)})
	if err != nil {
		r.log.Error("marshal room broadcast", sl.Err(err))
		return
	}
	r.registry.Publish(RoomChannel(roomID), data)
}

// Online reports whether a user currently has a live connection.
func (r *Router) Online(userID string) bool {
	return r.presence.IsOnline(userID)
}

// OnlineUsers returns the current presence snapshot.
func (r *Router) OnlineUsers() []string {
	return r.presence.Snapshot()
}
