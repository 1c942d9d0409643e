package core

import (
	"context"
	"log/slog"
	"time"

	"ChatCRM/entity"
	"ChatCRM/internal/config"
	"ChatCRM/internal/lib/sl"
	"ChatCRM/internal/ws"
)

// Repository is the persistence surface the service layer depends on.
type Repository interface {
	AuthenticateByToken(ctx context.Context, token string) (*entity.User, error)
	GenerateApiKey(ctx context.Context, name, ownerID string) (string, error)

	GetUserByID(ctx context.Context, userID string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) error

	CreateRoom(ctx context.Context, room *entity.ChatRoom, memberIDs []string) error
	GetRoomByID(ctx context.Context, roomID string) (*entity.ChatRoom, error)
	ListUserRooms(ctx context.Context, userID string, limit, offset int) ([]entity.ChatRoom, error)
	ListRoomMembers(ctx context.Context, roomID string) ([]string, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
	FindExistingDMRoom(ctx context.Context, userA, userB string) (*entity.ChatRoom, error)
	MarkRoomRead(ctx context.Context, roomID, userID string) (time.Time, error)

	CreateMessage(ctx context.Context, roomID, authorID, body string, att *entity.Attachment) (*entity.ChatMessage, error)
	ListMessages(ctx context.Context, roomID string, limit, offset int) ([]entity.ChatMessage, error)

	TakeSupportRoom(ctx context.Context, roomID, agentID string, window time.Duration) (*entity.ChatRoom, error)
	ReleaseSupportRoom(ctx context.Context, roomID string, actor *entity.User) (*entity.ChatRoom, error)
	ListSupportRooms(ctx context.Context, window time.Duration) ([]entity.ChatRoom, error)
}

// Core glues the store, the chat router and configuration into the handler
// surface the HTTP layer consumes.
type Core struct {
	repo   Repository
	router *ws.Router
	conf   *config.Config
	log    *slog.Logger
}

func New(repo Repository, router *ws.Router, conf *config.Config, log *slog.Logger) *Core {
	return &Core{
		repo:   repo,
		router: router,
		conf:   conf,
		log:    log.With(sl.Module("core")),
	}
}

func (c *Core) AuthenticateByToken(ctx context.Context, token string) (*entity.User, error) {
	return c.repo.AuthenticateByToken(ctx, token)
}

func (c *Core) GenerateApiKey(ctx context.Context, name, ownerID string) (string, error) {
	return c.repo.GenerateApiKey(ctx, name, ownerID)
}

func (c *Core) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	return c.repo.GetUserByID(ctx, userID)
}

func (c *Core) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := c.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Core) MarkOnline(userID string)  { c.router.MarkOnline(userID) }
func (c *Core) MarkOffline(userID string) { c.router.MarkOffline(userID) }
func (c *Core) OnlineUsers() []string     { return c.router.OnlineUsers() }
