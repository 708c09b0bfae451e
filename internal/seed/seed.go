package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/emre/learnhub/internal/app/models"
	appRepos "github.com/emre/learnhub/internal/app/repositories"
	"github.com/emre/learnhub/internal/pkg/auth"
)

// CreateDefaultData creates a demo instructor, a demo student and a couple
// of starter courses if they don't exist yet. Failures are collected instead
// of aborting so a partial seed never blocks startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	instructor, err := ensureUser(ctx, userRepo, &appModels.User{
		Username: "demo-instructor",
		Email:    "instructor@learnhub.app",
		Role:     appModels.RoleInstructor,
	}, "Instructor123")
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo instructor")
		finalErr = errors.Join(finalErr, err)
	}

	if _, err := ensureUser(ctx, userRepo, &appModels.User{
		Username: "demo-student",
		Email:    "student@learnhub.app",
		Role:     appModels.RoleStudent,
	}, "Student123"); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo student")
		finalErr = errors.Join(finalErr, err)
	}

	if instructor != nil {
		existing, err := courseRepo.GetByInstructorID(ctx, instructor.ID)
		if err != nil {
			lgr.Error().Err(err).Msg("Error listing demo instructor courses")
			return errors.Join(finalErr, err)
		}
		if len(existing) == 0 {
			starters := []*appModels.Course{
				{
					Title:        "Introduction to Go",
					Description:  "Syntax, tooling and the standard library from zero.",
					Price:        4900,
					InstructorID: instructor.ID,
				},
				{
					Title:        "PostgreSQL for Backend Developers",
					Description:  "Schema design, indexing and query tuning in practice.",
					Price:        5900,
					InstructorID: instructor.ID,
				},
			}
			for _, course := range starters {
				if err := courseRepo.Create(ctx, course); err != nil {
					lgr.Error().Err(err).Str("title", course.Title).Msg("Error creating starter course")
					finalErr = errors.Join(finalErr, err)
				}
			}
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

// ensureUser returns the existing user with the given email, creating it
// with the supplied password when absent.
func ensureUser(ctx context.Context, userRepo appRepos.IUserRepository, user *appModels.User, password string) (*appModels.User, error) {
	existing, err := userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	if err := userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
