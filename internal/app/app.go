package app

import (
	"context"

	"echosorter/config"
	"echosorter/internal/controllers"
	"echosorter/internal/database"
	"echosorter/internal/handlers/middleware"
	"echosorter/internal/jobs"
	"echosorter/internal/logger"
	"echosorter/internal/repositories"
	"echosorter/internal/services"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config

	Repositories repositories.Repository
	Services     services.Service
	Controllers  controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	repos := repositories.New(db)
	svcs := services.New(db, config, &repos)
	ctrls := controllers.New(svcs)
	middleware := middleware.New(config, svcs.Session)

	if config.SchedulerEnabled {
		if err := jobs.RegisterAllJobs(svcs.Scheduler, svcs); err != nil {
			return &App{}, log.Err("failed to register jobs", err)
		}
		if err := svcs.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:     db,
		Middleware:   middleware,
		Config:       config,
		Repositories: repos,
		Services:     svcs,
		Controllers:  ctrls,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Services.SpotifyAuth,
		a.Services.Session,
		a.Services.Transaction,
		a.Services.Sync,
		a.Services.Library,
		a.Services.PlaylistExport,
		a.Services.GenreRepair,
		a.Services.Scheduler,
		a.Controllers.Auth,
		a.Controllers.Library,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
