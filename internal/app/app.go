package app

import (
	"subsidy/config"
	"subsidy/internal/database"
	"subsidy/internal/events"
	"subsidy/internal/handlers/middleware"
	"subsidy/internal/logger"
	"subsidy/internal/repositories"
	"subsidy/internal/services"
	"subsidy/internal/websockets"
	"subsidy/internal/workers"

	assignmentController "subsidy/internal/controllers/assignment"
	requestController "subsidy/internal/controllers/request"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Dispatcher *workers.Dispatcher
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	LifecycleService   *services.LifecycleService

	// Repositories
	RequestRepo    repositories.RequestRepository
	AttachmentRepo repositories.AttachmentRepository
	ExpirationRepo repositories.ExpirationRepository
	AssignmentRepo repositories.AssignmentRepository
	UserRepo       repositories.UserRepository

	// Controllers
	RequestController    *requestController.RequestController
	AssignmentController *assignmentController.AssignmentController
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)
	dispatcher := workers.New(config.WorkerPoolSize)

	// Initialize services
	transactionService := services.NewTransactionService(db)

	// Initialize repositories
	requestRepo := repositories.NewRequest(db)
	attachmentRepo := repositories.NewAttachment(db)
	expirationRepo := repositories.NewExpiration(db)
	assignmentRepo := repositories.NewAssignment(db)
	userRepo := repositories.NewUser(db)

	// Initialize controllers with repositories and services
	middleware := middleware.New(config)
	requestController := requestController.New(
		requestRepo,
		attachmentRepo,
		expirationRepo,
		transactionService,
		eventBus,
		config,
	)
	assignmentController := assignmentController.New(assignmentRepo, userRepo, eventBus)

	lifecycleService := services.NewLifecycleService(
		dispatcher,
		requestController,
		assignmentController,
		requestRepo,
	)

	websocket, err := websockets.New(db, eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	app := &App{
		Database:             db,
		Config:               config,
		Middleware:           middleware,
		EventBus:             eventBus,
		Dispatcher:           dispatcher,
		TransactionService:   transactionService,
		LifecycleService:     lifecycleService,
		RequestRepo:          requestRepo,
		AttachmentRepo:       attachmentRepo,
		ExpirationRepo:       expirationRepo,
		AssignmentRepo:       assignmentRepo,
		UserRepo:             userRepo,
		RequestController:    requestController,
		AssignmentController: assignmentController,
		Websocket:            websocket,
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
		a.Websocket,
		a.EventBus,
		a.Dispatcher,
		a.TransactionService,
		a.LifecycleService,
		a.RequestController,
		a.AssignmentController,
		a.RequestRepo,
		a.AttachmentRepo,
		a.ExpirationRepo,
		a.AssignmentRepo,
		a.UserRepo,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
