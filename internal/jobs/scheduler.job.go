package jobs

import (
	"echosorter/internal/logger"
	"echosorter/internal/services"
)

const (
	Daily  = services.Daily
	Hourly = services.Hourly
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	services services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	genreRepairJob := NewGenreRepairJob(services.GenreRepair, Daily)
	if err := schedulerService.AddJob(genreRepairJob); err != nil {
		return log.Err("failed to register genre repair job", err)
	}
	log.Info("Registered genre repair job", "schedule", "daily")

	return nil
}
