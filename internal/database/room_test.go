package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChatCRM/entity"
)

func TestFindExistingDMRoomIgnoresMemberOrder(t *testing.T) {
	s := newTestStorage(t)
	seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "bob", entity.UserType)
	seedRoom(t, s, "dm1", entity.RoomTypeDM, "alice", "alice", "bob")

	found, err := s.FindExistingDMRoom(context.Background(), "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "dm1", found.RoomID)

	swapped, err := s.FindExistingDMRoom(context.Background(), "bob", "alice")
	require.NoError(t, err)
	require.NotNil(t, swapped)
	assert.Equal(t, "dm1", swapped.RoomID)
}

func TestFindExistingDMRoomAbsent(t *testing.T) {
	s := newTestStorage(t)
	seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "bob", entity.UserType)
	seedUser(t, s, "carol", entity.UserType)
	seedRoom(t, s, "dm1", entity.RoomTypeDM, "alice", "alice", "bob")

	found, err := s.FindExistingDMRoom(context.Background(), "alice", "carol")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListRoomMembersUnknownRoomIsEmpty(t *testing.T) {
	s := newTestStorage(t)

	members, err := s.ListRoomMembers(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAddMemberIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	seedUser(t, s, "alice", entity.UserType)
	seedRoom(t, s, "g1", entity.RoomTypeGroup, "alice", "alice")

	require.NoError(t, s.AddMember(context.Background(), "g1", "alice"))
	require.NoError(t, s.AddMember(context.Background(), "g1", "alice"))

	members, err := s.ListRoomMembers(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, members)
}

func TestMarkRoomRead(t *testing.T) {
	s := newTestStorage(t)
	seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "mallory", entity.UserType)
	seedRoom(t, s, "dm1", entity.RoomTypeDM, "alice", "alice", "bob")

	readAt, err := s.MarkRoomRead(context.Background(), "dm1", "alice")
	require.NoError(t, err)
	assert.False(t, readAt.IsZero())

	_, err = s.MarkRoomRead(context.Background(), "dm1", "mallory")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.MarkRoomRead(context.Background(), "ghost", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUserRoomsExcludesSupportAndEmpty(t *testing.T) {
	s := newTestStorage(t)
	seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "bob", entity.UserType)

	// Created by alice, no messages yet: visible to her.
	seedRoom(t, s, "dm1", entity.RoomTypeDM, "alice", "alice", "bob")
	// Created by bob, no messages: hidden from alice.
	seedRoom(t, s, "dm2", entity.RoomTypeDM, "bob", "alice", "bob")
	// Support rooms never show in the personal chat list.
	seedRoom(t, s, "sup1", entity.RoomTypeSupport, "alice", "alice")

	rooms, err := s.ListUserRooms(context.Background(), "alice", 50, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "dm1", rooms[0].RoomID)

	// A message makes dm2 visible too.
	_, err = s.CreateMessage(context.Background(), "dm2", "bob", "ping", nil)
	require.NoError(t, err)

	rooms, err = s.ListUserRooms(context.Background(), "alice", 50, 0)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestUnreadCount(t *testing.T) {
	s := newTestStorage(t)
	seedUser(t, s, "alice", entity.UserType)
	seedUser(t, s, "bob", entity.UserType)
	seedRoom(t, s, "dm1", entity.RoomTypeDM, "alice", "alice", "bob")

	_, err := s.CreateMessage(context.Background(), "dm1", "bob", "one", nil)
	require.NoError(t, err)
	_, err = s.CreateMessage(context.Background(), "dm1", "bob", "two", nil)
	require.NoError(t, err)
	_, err = s.CreateMessage(context.Background(), "dm1", "alice", "own messages never count", nil)
	require.NoError(t, err)

	rooms, err := s.ListUserRooms(context.Background(), "alice", 50, 0)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(2), rooms[0].Unread)

	_, err = s.MarkRoomRead(context.Background(), "dm1", "alice")
	require.NoError(t, err)

	rooms, err = s.ListUserRooms(context.Background(), "alice", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rooms[0].Unread)
}
