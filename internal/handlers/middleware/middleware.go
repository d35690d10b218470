package middleware

import (
	"echosorter/config"
	"echosorter/internal/logger"
	"echosorter/internal/services"
)

type Middleware struct {
	Config         config.Config
	sessionService *services.SessionService
	log            logger.Logger
}

func New(config config.Config, sessionService *services.SessionService) Middleware {
	log := logger.New("middleware")

	return Middleware{
		Config:         config,
		sessionService: sessionService,
		log:            log,
	}
}
