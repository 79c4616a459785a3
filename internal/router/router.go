package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pipcrest/tradejournal/backend/internal/handlers"
	"github.com/pipcrest/tradejournal/backend/internal/middleware"
	"github.com/pipcrest/tradejournal/backend/internal/models"
	"github.com/pipcrest/tradejournal/backend/internal/notify"
	"github.com/pipcrest/tradejournal/backend/internal/realtime"
	"github.com/pipcrest/tradejournal/backend/internal/repositories"
	"github.com/pipcrest/tradejournal/backend/internal/social"
	"github.com/pipcrest/tradejournal/backend/pkg/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *logrus.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// The returned function stops the change feed listener.
func SetupRoutes(
	ctx context.Context,
	e *echo.Echo,
	cfg *config.Config,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	authClient *auth.Client,
	messagingClient *messaging.Client,
	log *logrus.Logger,
) (func(), error) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
	)
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	if err := setupChangeFeedTriggers(pgdb, cfg.FeedChannel); err != nil {
		return nil, err
	}
	log.Info("Change feed triggers installed.")

	// Health check - always accessible
	handlers.RegisterHealthRoutes(e)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	reactionRepo := repositories.NewPostgresReactionRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	setupRepo := repositories.NewMongoTradeSetupRepository(mgClient.Database("tradejournal"))

	// --- Social core ---
	dispatcher := notify.NewDispatcher(notificationRepo, messagingClient, log)
	friendshipService := social.NewFriendshipService(friendshipRepo, dispatcher, log)
	reactionService := social.NewReactionService(reactionRepo)
	counters := social.NewCounterSync(cfg.CounterStaleness)
	feed := realtime.Listen(ctx, cfg.PostgresConnStr, cfg.FeedChannel, log)

	facade := social.NewFacade(
		friendshipService,
		reactionService,
		commentRepo,
		reactionRepo,
		setupRepo,
		counters,
		feed,
		dispatcher,
		log,
	)
	go facade.Run(ctx)
	log.Info("Social facade running with live counter reconciliation.")

	// --- Protected routes (require Firebase authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(authClient))
	log.Info("Firebase authentication middleware applied to /api/v1 group.")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)

	setupHandler := handlers.NewSetupHandler(setupRepo, facade)
	setupHandler.RegisterSetupRoutes(api)

	friendshipHandler := handlers.NewFriendshipHandler(facade)
	friendshipHandler.RegisterFriendshipRoutes(api)

	commentHandler := handlers.NewCommentHandler(facade, setupRepo)
	commentHandler.RegisterCommentRoutes(api)

	reactionHandler := handlers.NewReactionHandler(facade, setupRepo)
	reactionHandler.RegisterReactionRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Info("All routes configured.")
	return feed.Close, nil
}

// setupChangeFeedTriggers installs the pg_notify trigger that publishes
// comment and reaction row changes on the configured channel.
func setupChangeFeedTriggers(db *gorm.DB, channel string) error {
	const fn = `
CREATE OR REPLACE FUNCTION notify_engagement_change() RETURNS trigger AS $$
DECLARE
	payload text;
BEGIN
	IF TG_OP = 'DELETE' THEN
		payload := json_build_object('event', TG_OP, 'table', TG_TABLE_NAME, 'row', row_to_json(OLD))::text;
	ELSE
		payload := json_build_object('event', TG_OP, 'table', TG_TABLE_NAME, 'row', row_to_json(NEW))::text;
	END IF;
	PERFORM pg_notify(TG_ARGV[0], payload);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;`

	if err := db.Exec(fn).Error; err != nil {
		return err
	}

	for _, table := range []string{"comments", "reactions"} {
		if err := db.Exec("DROP TRIGGER IF EXISTS " + table + "_engagement_notify ON " + table).Error; err != nil {
			return err
		}
		stmt := "CREATE TRIGGER " + table + "_engagement_notify AFTER INSERT OR UPDATE OR DELETE ON " + table +
			" FOR EACH ROW EXECUTE FUNCTION notify_engagement_change('" + channel + "')"
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
