package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ChatCRM/entity"
	"ChatCRM/internal/config"
	"ChatCRM/internal/database"
	"ChatCRM/internal/ws"
)

func newTestCore(t *testing.T) (*Core, *repository.Storage) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := repository.NewWithDB(db, log)
	require.NoError(t, err)

	conf := &config.Config{}
	conf.Chat.SupportClaimHours = 8
	conf.Chat.MaxFileSizeMB = 10
	conf.Media.Dir = t.TempDir()
	conf.Media.URLSecret = "test-secret"
	conf.Media.URLTTLMins = 60

	hub := ws.NewHub(log)
	router := ws.NewRouter(hub, ws.NewPresence(), storage, log)
	return New(storage, router, conf, log), storage
}

func seedUser(t *testing.T, s *repository.Storage, userID, typeCode string) *entity.User {
	t.Helper()
	user := &entity.User{UserID: userID, Username: userID, TypeCode: typeCode}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestCreateRoomDMDedupe(t *testing.T) {
	c, s := newTestCore(t)
	alice := seedUser(t, s, "alice", entity.UserType)
	bob := seedUser(t, s, "bob", entity.UserType)

	first, reused, err := c.CreateRoom(context.Background(), alice, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeDM,
		Members: []string{"bob"},
	})
	require.NoError(t, err)
	assert.False(t, reused)

	// Same pair from the other side comes back as the existing room.
	second, reused, err := c.CreateRoom(context.Background(), bob, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeDM,
		Members: []string{"alice"},
	})
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, first.RoomID, second.RoomID)
}

func TestCreateRoomMemberCountInvariants(t *testing.T) {
	c, s := newTestCore(t)
	alice := seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "bob", entity.UserType)
	seedUser(t, s, "carol", entity.UserType)

	_, _, err := c.CreateRoom(context.Background(), alice, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeDM,
		Members: []string{"bob", "carol"},
	})
	assert.Error(t, err, "a DM with three members must be rejected")

	_, _, err = c.CreateRoom(context.Background(), alice, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeSelf,
		Members: []string{"bob"},
	})
	assert.Error(t, err, "a SELF room holds only its creator")

	room, _, err := c.CreateRoom(context.Background(), alice, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeSelf,
		Members: []string{"alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoomTypeSelf, room.Type)
}

func TestCreateRoomUnknownMemberRejected(t *testing.T) {
	c, s := newTestCore(t)
	alice := seedUser(t, s, "alice", entity.UserType)

	_, _, err := c.CreateRoom(context.Background(), alice, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeDM,
		Members: []string{"ghost"},
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSendMessageRequiresMembership(t *testing.T) {
	c, s := newTestCore(t)
	alice := seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "bob", entity.UserType)
	mallory := seedUser(t, s, "mallory", entity.UserType)

	room, _, err := c.CreateRoom(context.Background(), alice, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeDM,
		Members: []string{"bob"},
	})
	require.NoError(t, err)

	_, err = c.SendMessage(context.Background(), mallory, room.RoomID, "let me in")
	assert.ErrorIs(t, err, repository.ErrForbidden)

	msg, err := c.SendMessage(context.Background(), alice, room.RoomID, "hi bob")
	require.NoError(t, err)
	assert.Equal(t, "hi bob", msg.Body)
}

func TestSupportRoomOnlyAssignedAgentWrites(t *testing.T) {
	c, s := newTestCore(t)
	visitor := seedUser(t, s, "visitor", entity.GuestType)
	agent1 := seedUser(t, s, "agent1", entity.AgentType)
	agent2 := seedUser(t, s, "agent2", entity.AgentType)

	room, _, err := c.CreateRoom(context.Background(), visitor, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeSupport,
		Members: []string{"visitor"},
	})
	require.NoError(t, err)

	claimed, err := c.TakeSupportRoom(context.Background(), agent1, room.RoomID)
	require.NoError(t, err)
	require.NotNil(t, claimed.AssignedAgentID)

	_, err = c.TakeSupportRoom(context.Background(), agent2, room.RoomID)
	assert.ErrorIs(t, err, repository.ErrClaimConflict)

	// The assigned agent writes, the visitor writes, a rival agent cannot.
	_, err = c.SendMessage(context.Background(), agent1, room.RoomID, "how can I help?")
	assert.NoError(t, err)
	_, err = c.SendMessage(context.Background(), visitor, room.RoomID, "my order is lost")
	assert.NoError(t, err)

	require.NoError(t, s.AddMember(context.Background(), room.RoomID, agent2.UserID))
	_, err = c.SendMessage(context.Background(), agent2, room.RoomID, "stealing this chat")
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = c.ReleaseSupportRoom(context.Background(), agent2, room.RoomID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = c.ReleaseSupportRoom(context.Background(), agent1, room.RoomID)
	assert.NoError(t, err)
}

func TestListSupportRoomsUsesConfiguredWindow(t *testing.T) {
	c, s := newTestCore(t)
	visitor := seedUser(t, s, "visitor", entity.GuestType)
	agent1 := seedUser(t, s, "agent1", entity.AgentType)

	room, _, err := c.CreateRoom(context.Background(), visitor, &entity.CreateRoomRequest{
		Type:    entity.RoomTypeSupport,
		Members: []string{"visitor"},
	})
	require.NoError(t, err)

	_, err = c.TakeSupportRoom(context.Background(), agent1, room.RoomID)
	require.NoError(t, err)

	rooms, err := c.ListSupportRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.NotNil(t, rooms[0].AssignedAgentID)
	assert.Equal(t, agent1.UserID, *rooms[0].AssignedAgentID)
}
