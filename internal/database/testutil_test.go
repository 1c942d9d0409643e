package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ChatCRM/entity"
)

func init() {
	// Local overrides for developers running against a real database.
	_ = godotenv.Load("../../.env")
}

// newTestStorage opens a private in-memory SQLite database migrated with
// the full schema.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	storage, err := NewWithDB(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return storage
}

func seedUser(t *testing.T, s *Storage, userID, typeCode string) *entity.User {
	t.Helper()
	user := &entity.User{
		UserID:   userID,
		Username: userID,
		TypeCode: typeCode,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedRoom(t *testing.T, s *Storage, roomID, roomType, createdBy string, members ...string) *entity.ChatRoom {
	t.Helper()
	room := &entity.ChatRoom{
		RoomID:      roomID,
		Type:        roomType,
		CreatedByID: createdBy,
	}
	require.NoError(t, s.CreateRoom(context.Background(), room, members))
	return room
}
