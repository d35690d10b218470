package jobs

import (
	"context"

	"echosorter/internal/logger"
	"echosorter/internal/services"
)

type GenreRepairJob struct {
	genreRepairService *services.GenreRepairService
	log                logger.Logger
	schedule           services.Schedule
}

func NewGenreRepairJob(
	genreRepairService *services.GenreRepairService,
	schedule services.Schedule,
) *GenreRepairJob {
	log := logger.New("genreRepairJob")
	log.Info("Creating new genre repair job", "schedule", schedule)

	return &GenreRepairJob{
		genreRepairService: genreRepairService,
		log:                log,
		schedule:           schedule,
	}
}

func (j *GenreRepairJob) Name() string {
	return "ArtistGenreRepair"
}

func (j *GenreRepairJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting artist genre repair")

	if err := j.genreRepairService.RepairAllUsers(ctx); err != nil {
		return log.Err("artist genre repair failed", err)
	}

	log.Info("Artist genre repair completed successfully")
	return nil
}

func (j *GenreRepairJob) Schedule() services.Schedule {
	return j.schedule
}
