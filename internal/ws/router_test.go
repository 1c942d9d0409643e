package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChatCRM/entity"
)

type fakeStore struct {
	users    map[string]*entity.User
	rooms    map[string]*entity.ChatRoom
	members  map[string][]string
	messages []entity.ChatMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*entity.User),
		rooms:   make(map[string]*entity.ChatRoom),
		members: make(map[string][]string),
	}
}

func (s *fakeStore) addUser(userID string) *entity.User {
	u := &entity.User{UserID: userID, Username: userID, TypeCode: entity.UserType}
	s.users[userID] = u
	return u
}

func (s *fakeStore) addRoom(roomID, roomType string, memberIDs ...string) {
	s.rooms[roomID] = &entity.ChatRoom{RoomID: roomID, Type: roomType}
	s.members[roomID] = memberIDs
}

func (s *fakeStore) GetUserByID(_ context.Context, userID string) (*entity.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, entityNotFound
}

func (s *fakeStore) ListRoomsForUser(_ context.Context, userID string) ([]entity.ChatRoom, error) {
	var rooms []entity.ChatRoom
	for roomID, members := range s.members {
		for _, m := range members {
			if m == userID {
				rooms = append(rooms, *s.rooms[roomID])
			}
		}
	}
	return rooms, nil
}

func (s *fakeStore) ListRoomMembers(_ context.Context, roomID string) ([]string, error) {
	return s.members[roomID], nil
}

func (s *fakeStore) GetRoomByID(_ context.Context, roomID string) (*entity.ChatRoom, error) {
	if r, ok := s.rooms[roomID]; ok {
		return r, nil
	}
	return nil, entityNotFound
}

func (s *fakeStore) CreateMessage(_ context.Context, roomID, authorID, body string, _ *entity.Attachment) (*entity.ChatMessage, error) {
	if _, ok := s.rooms[roomID]; !ok {
		return nil, entityNotFound
	}
	msg := entity.ChatMessage{
		ID:        int64(len(s.messages) + 1),
		RoomID:    roomID,
		UserID:    &authorID,
		Body:      body,
		Kind:      entity.MessageKindText,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

var entityNotFound = assert.AnError

func newTestRouter(store *fakeStore) (*Router, *Hub) {
	hub := NewHub(testLogger())
	return NewRouter(hub, NewPresence(), store, testLogger()), hub
}

func decodeEnvelope(t *testing.T, frame []byte) (string, map[string]any) {
	t.Helper()
	var env struct {
		Type    string         `json:"type"`
		Message map[string]any `json:"message"`
	}
	require.NoError(t, json.Unmarshal(frame, &env))
	return env.Type, env.Message
}

func TestConnectRejectsSentinelIdentities(t *testing.T) {
	router, _ := newTestRouter(newFakeStore())

	for _, id := range []string{"", "null", "undefined", "None"} {
		sub := newFakeSub()
		_, err := router.Connect(context.Background(), id, sub)
		assert.Error(t, err, "identity %q must be rejected", id)
		assert.Empty(t, sub.received())
	}
}

func TestConnectRejectsUnknownUser(t *testing.T) {
	router, _ := newTestRouter(newFakeStore())

	sub := newFakeSub()
	_, err := router.Connect(context.Background(), "nobody", sub)
	assert.Error(t, err)
}

func TestConnectSubscribesAndBroadcastsPresence(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1")
	store.addRoom("r1", entity.RoomTypeDM, "u1", "u2")

	router, hub := newTestRouter(store)

	sub := newFakeSub()
	user, err := router.Connect(context.Background(), "u1", sub)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)

	// The first frame is the presence snapshot including the joiner itself.
	frames := sub.received()
	require.NotEmpty(t, frames)
	typ, msg := decodeEnvelope(t, frames[0])
	assert.Equal(t, entity.EnvelopeType, typ)
	assert.Equal(t, "onlineUser", msg["action"])
	assert.Equal(t, []any{"u1"}, msg["userList"])

	assert.Equal(t, 1, hub.SubscriberCount(UserChannel("u1")))
	assert.Equal(t, 1, hub.SubscriberCount(RoomChannel("r1")))
	assert.Equal(t, 1, hub.SubscriberCount(PresenceChannel))
}

func TestMessageDeliveredToMembersOnly(t *testing.T) {
	store := newFakeStore()
	u1 := store.addUser("u1")
	store.addUser("u2")
	store.addUser("u3")
	store.addRoom("r7", entity.RoomTypeGroup, "u1", "u2", "u3")

	router, hub := newTestRouter(store)

	sub1 := newFakeSub()
	sub2 := newFakeSub()
	_, err := router.Connect(context.Background(), "u1", sub1)
	require.NoError(t, err)
	_, err = router.Connect(context.Background(), "u2", sub2)
	require.NoError(t, err)
	// u3 is a member but offline.

	// An outsider holding a stale room subscription must not receive chat
	// messages: delivery targets the member list, not the room channel.
	outsider := newFakeSub()
	hub.Subscribe(RoomChannel("r7"), outsider)

	before1 := len(sub1.received())
	before2 := len(sub2.received())

	raw, _ := json.Marshal(entity.ChatEvent{Action: entity.ActionMessage, RoomID: "r7", Message: "hi"})
	router.RouteEvent(context.Background(), u1, sub1, raw)

	require.Len(t, store.messages, 1)
	assert.Equal(t, "hi", store.messages[0].Body)

	frames1 := sub1.received()[before1:]
	frames2 := sub2.received()[before2:]
	require.Len(t, frames1, 1)
	require.Len(t, frames2, 1)
	assert.Empty(t, outsider.received())

	_, msg := decodeEnvelope(t, frames2[0])
	assert.Equal(t, "message", msg["action"])
	assert.Equal(t, "hi", msg["message"])
	assert.Equal(t, "u1", msg["userId"])
	assert.Equal(t, "r7", msg["roomId"])
}

func TestUploadRelayIsNotPersistedAgain(t *testing.T) {
	store := newFakeStore()
	u1 := store.addUser("u1")
	store.addRoom("r1", entity.RoomTypeDM, "u1", "u2")

	router, _ := newTestRouter(store)
	sub := newFakeSub()
	_, err := router.Connect(context.Background(), "u1", sub)
	require.NoError(t, err)

	raw, _ := json.Marshal(entity.ChatEvent{
		Action:     entity.ActionMessage,
		RoomID:     "r1",
		FromUpload: true,
		FileName:   "report.pdf",
	})
	router.RouteEvent(context.Background(), u1, sub, raw)

	assert.Empty(t, store.messages)
}

func TestTypingBroadcastsToRoomChannel(t *testing.T) {
	store := newFakeStore()
	u1 := store.addUser("u1")
	store.addUser("u2")
	store.addRoom("r7", entity.RoomTypeDM, "u1", "u2")

	router, _ := newTestRouter(store)

	sub1 := newFakeSub()
	sub2 := newFakeSub()
	_, err := router.Connect(context.Background(), "u1", sub1)
	require.NoError(t, err)
	_, err = router.Connect(context.Background(), "u2", sub2)
	require.NoError(t, err)

	before := len(sub2.received())
	raw, _ := json.Marshal(entity.ChatEvent{Action: entity.ActionTyping, RoomID: "r7"})
	router.RouteEvent(context.Background(), u1, sub1, raw)

	frames := sub2.received()[before:]
	require.Len(t, frames, 1)
	_, msg := decodeEnvelope(t, frames[0])
	assert.Equal(t, "typing", msg["action"])
	assert.Empty(t, store.messages, "typing must not persist anything")
}

func TestUnknownActionFallsBackToRoomBroadcast(t *testing.T) {
	store := newFakeStore()
	u1 := store.addUser("u1")
	store.addUser("u2")
	store.addRoom("r7", entity.RoomTypeDM, "u1", "u2")

	router, _ := newTestRouter(store)

	sub2 := newFakeSub()
	_, err := router.Connect(context.Background(), "u2", sub2)
	require.NoError(t, err)

	before := len(sub2.received())
	raw, _ := json.Marshal(entity.ChatEvent{Action: "mystery", RoomID: "r7"})
	router.RouteEvent(context.Background(), u1, newFakeSub(), raw)

	frames := sub2.received()[before:]
	require.Len(t, frames, 1)
	_, msg := decodeEnvelope(t, frames[0])
	assert.Equal(t, "mystery", msg["action"])
}

func TestMalformedEventIsDropped(t *testing.T) {
	store := newFakeStore()
	u1 := store.addUser("u1")

	router, _ := newTestRouter(store)
	router.RouteEvent(context.Background(), u1, newFakeSub(), []byte("{not json"))
	assert.Empty(t, store.messages)
}

func TestJoinRoomSubscribesWithoutMembershipCheck(t *testing.T) {
	store := newFakeStore()
	agent := store.addUser("agent1")
	store.addRoom("sup1", entity.RoomTypeSupport, "visitor")

	router, hub := newTestRouter(store)
	sub := newFakeSub()

	// Agents watch support rooms before taking them, so join_room works
	// even when the sender is not a member yet.
	raw, _ := json.Marshal(entity.ChatEvent{Action: entity.ActionJoinRoom, RoomID: "sup1"})
	router.RouteEvent(context.Background(), agent, sub, raw)
	assert.Equal(t, 1, hub.SubscriberCount(RoomChannel("sup1")))

	// Room channels carry only ephemeral traffic; chat messages still skip
	// the observer because delivery targets the member list.
	before := len(sub.received())
	rawMsg, _ := json.Marshal(entity.ChatEvent{Action: entity.ActionMessage, RoomID: "sup1", Message: "hi"})
	router.RouteEvent(context.Background(), store.addUser("visitor"), newFakeSub(), rawMsg)
	assert.Empty(t, sub.received()[before:])

	rawTyping, _ := json.Marshal(entity.ChatEvent{Action: entity.ActionTyping, RoomID: "sup1"})
	router.RouteEvent(context.Background(), store.addUser("other"), newFakeSub(), rawTyping)
	assert.Len(t, sub.received()[before:], 1)
}

func TestDisconnectUpdatesPresence(t *testing.T) {
	store := newFakeStore()
	store.addUser("u1")
	store.addUser("u2")

	router, hub := newTestRouter(store)

	sub1 := newFakeSub()
	sub2 := newFakeSub()
	_, err := router.Connect(context.Background(), "u1", sub1)
	require.NoError(t, err)
	_, err = router.Connect(context.Background(), "u2", sub2)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"u1", "u2"}, router.OnlineUsers())

	before := len(sub2.received())
	router.Disconnect("u1", sub1)

	assert.Equal(t, []string{"u2"}, router.OnlineUsers())
	assert.Equal(t, 0, hub.SubscriberCount(UserChannel("u1")))

	// The survivor sees the shrunken snapshot.
	frames := sub2.received()[before:]
	require.NotEmpty(t, frames)
	_, msg := decodeEnvelope(t, frames[len(frames)-1])
	assert.Equal(t, []any{"u2"}, msg["userList"])
}

func TestFanOutUnknownRoomHasZeroTargets(t *testing.T) {
	router, _ := newTestRouter(newFakeStore())

	delivered, err := router.FanOut(context.Background(), "ghost", entity.MessagePayload{})
	require.NoError(t, err)
	assert.Equal(t, 0, delivered)
}
