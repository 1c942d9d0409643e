package main

import (
	"flag"
	"log/slog"
	"os"

	"ChatCRM/impl/core"
	"ChatCRM/internal/config"
	"ChatCRM/internal/database"
	"ChatCRM/internal/http-server/api"
	"ChatCRM/internal/job"
	"ChatCRM/internal/lib/logger"
	"ChatCRM/internal/lib/sl"
	"ChatCRM/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	lg.Info("starting ChatCRM", slog.String("env", conf.Env))

	storage, err := repository.New(conf, lg)
	if err != nil {
		lg.Error("failed to connect to database", sl.Err(err))
		os.Exit(1)
	}

	hub := ws.NewHub(lg)
	presence := ws.NewPresence()
	router := ws.NewRouter(hub, presence, storage, lg)

	handler := core.New(storage, router, conf, lg)

	cleanup := job.StartCleanup(conf, storage, lg)
	defer cleanup.Stop()

	if err := api.New(conf, lg, handler, router); err != nil {
		lg.Error("api server stopped", sl.Err(err))
		os.Exit(1)
	}
}
