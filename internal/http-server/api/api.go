package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/config"
	"ChatCRM/internal/http-server/handlers/errors"
	"ChatCRM/internal/http-server/handlers/files"
	"ChatCRM/internal/http-server/handlers/key"
	"ChatCRM/internal/http-server/handlers/message"
	"ChatCRM/internal/http-server/handlers/presence"
	"ChatCRM/internal/http-server/handlers/room"
	"ChatCRM/internal/http-server/handlers/support"
	"ChatCRM/internal/http-server/handlers/upload"
	"ChatCRM/internal/http-server/handlers/user"
	"ChatCRM/internal/http-server/middleware/authenticate"
	"ChatCRM/internal/http-server/middleware/timeout"
	"ChatCRM/internal/lib/sl"
	"ChatCRM/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	room.Core
	message.Core
	upload.Core
	files.Core
	support.Core
	user.Core
	key.Core
	presence.Core
}

// New builds the router and serves until the listener fails. The socket
// endpoint and signed file downloads sit outside the bearer-auth group;
// everything under /api/v1 requires a key.
func New(conf *config.Config, log *slog.Logger, handler Handler, router *ws.Router) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.NotFound(errors.NotFound(log))
	r.MethodNotAllowed(errors.NotAllowed(log))

	r.Get("/ws/chat/{visitorId}", ws.ServeWs(router, log))
	r.Get("/api/v1/files/{fileId}", files.Download(log, handler))

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(timeout.Timeout(15))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Use(authenticate.New(log, handler))

		v1.Route("/rooms", func(r chi.Router) {
			r.Get("/", room.List(log, handler))
			r.Post("/", room.Create(log, handler))
			r.Get("/{roomId}/messages", message.List(log, handler))
			r.Post("/{roomId}/messages", message.Send(log, handler))
			r.Post("/{roomId}/read", message.MarkRead(log, handler))
		})
		v1.Route("/support", func(r chi.Router) {
			r.Get("/", support.List(log, handler))
			r.Post("/{roomId}/take", support.Take(log, handler))
			r.Post("/{roomId}/release", support.Release(log, handler))
		})
		v1.Route("/user", func(r chi.Router) {
			r.Get("/", user.GetUser(log, handler))
			r.Post("/create", user.CreateUser(log, handler))
		})
		v1.Route("/presence", func(r chi.Router) {
			r.Get("/", presence.List(log, handler))
			r.Post("/online", presence.Online(log, handler))
			r.Post("/offline", presence.Offline(log, handler))
		})
		v1.Post("/upload", upload.Upload(log, handler))
		v1.Route("/key", func(r chi.Router) {
			r.Post("/new", key.Generate(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  r,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
