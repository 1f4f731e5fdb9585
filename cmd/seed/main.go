package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/port/outbound"
	"github.com/fixora/tasklist/application/usecase"
	"github.com/fixora/tasklist/infrastructure/adapter/postgres"
	"github.com/fixora/tasklist/infrastructure/config"
	"github.com/fixora/tasklist/infrastructure/service/jwt"
	"github.com/fixora/tasklist/infrastructure/service/logger"
)

// seed creates a demo user with a few tasks and prints a token pair for it,
// so the API can be exercised locally without a client.
func main() {
	log := logrus.New()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to seed a production database")
	}

	email := getenvDefault("SEED_USER_EMAIL", "demo@example.com")
	titles := strings.Split(getenvDefault("SEED_TASKS", "Read the API docs,Create a task,Refresh a token"), ",")

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("failed to ping database")
	}

	appLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      "text",
		ServiceName: "seed",
	})

	tokenService, err := jwt.NewJWTService(cfg, appLogger)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize token service")
	}

	users := usecase.NewUserUseCase(postgres.NewUserRepositoryAdapter(db), tokenService, appLogger)
	tasks := usecase.NewTaskUseCase(postgres.NewTaskRepositoryAdapter(db), appLogger)

	user, err := users.CreateUser(ctx, email)
	switch {
	case errors.Is(err, outbound.ErrUserAlreadyExists):
		log.WithField("email", logger.RedactEmail(email)).Info("user already exists, reusing it")
	case err != nil:
		log.WithError(err).Fatal("failed to seed user")
	default:
		log.WithField("user_id", user.ID).Info("seeded user")
	}

	login, err := users.LookupUser(ctx, email)
	if err != nil {
		log.WithError(err).Fatal("failed to look up seeded user")
	}

	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		task, err := tasks.CreateTask(ctx, login.User.ID, inbound.CreateTaskRequest{Title: title})
		if err != nil {
			log.WithError(err).Fatal("failed to seed task")
		}
		log.WithField("task_id", task.ID).Info("seeded task")
	}

	fmt.Printf("user_id=%s\naccess_token=%s\nrefresh_token=%s\n", login.User.ID, login.AccessToken, login.RefreshToken)
}

func getenvDefault(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
