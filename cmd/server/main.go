// Command server runs the chyrp blog API.
//
//	@title						Chyrp API
//	@version					1.0
//	@description				Blog backend with cascade (keyset) pagination.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chyrp/config"
	_ "chyrp/docs"
	"chyrp/internal/adapters/auth"
	"chyrp/internal/adapters/cache"
	"chyrp/internal/adapters/email"
	"chyrp/internal/adapters/scheduler"
	"chyrp/internal/cascade"
	httpdelivery "chyrp/internal/delivery/http"
	"chyrp/internal/delivery/http/controllers"
	"chyrp/internal/domain"
	"chyrp/internal/repository/postgres"
	"chyrp/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 15 * time.Second
	bcryptCost      = 12
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()

	responseCache, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}

	userRepo := postgres.NewUserRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	postRepo := postgres.NewPostRepository(db)
	tagRepo := postgres.NewTagRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	viewRepo := postgres.NewViewRepository(db)
	interactionRepo := postgres.NewInteractionRepository(db)
	mediaRepo := postgres.NewMediaRepository(db)

	jwt := auth.NewJWT(cfg.JWTSecret)
	limits := cascade.Limits{Default: cfg.CascadeDefaultLimit, Max: cfg.CascadeMaxLimit}

	userService := services.NewUserService(userRepo, groupRepo, postRepo, auth.NewBcryptHasher(bcryptCost), jwt, cfg.JWTExpiry, logger, serviceTimeout)
	cascadeService := services.NewCascadeService(postRepo, tagRepo, categoryRepo, userRepo, limits, serviceTimeout)
	postService := services.NewPostService(postRepo, mediaRepo, serviceTimeout)
	tagService := services.NewTagService(tagRepo, postRepo, responseCache, logger, serviceTimeout)
	categoryService := services.NewCategoryService(categoryRepo, postRepo, responseCache, logger, serviceTimeout)
	emailService := services.NewEmailService(mailer, renderer, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, emailService, logger, serviceTimeout)
	viewService := services.NewViewService(viewRepo, postRepo, cfg.ViewDedupeWindow, serviceTimeout)
	interactionService := services.NewInteractionService(interactionRepo, postRepo, userRepo, serviceTimeout)
	mediaService := services.NewMediaService(mediaRepo, logger, serviceTimeout)

	if err := userService.Seed(ctx, cfg.SeedAdminPassword); err != nil {
		return err
	}

	jobs := scheduler.New(logger, jobTimeout)
	if err := jobs.AddMediaCleanup(cfg.MediaCleanupSchedule, mediaService); err != nil {
		return err
	}
	jobs.Start()

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Cascade:     controllers.NewCascadeController(logger, cascadeService, cfg.CascadeDefaultLimit),
		Users:       controllers.NewUserController(logger, userService),
		Groups:      controllers.NewGroupController(logger, userService),
		Posts:       controllers.NewPostController(logger, postService),
		Tags:        controllers.NewTagController(logger, tagService),
		Categories:  controllers.NewCategoryController(logger, categoryService),
		Comments:    controllers.NewCommentController(logger, commentService),
		Views:       controllers.NewViewController(logger, viewService),
		Interaction: controllers.NewInteractionController(logger, interactionService),
		Media:       controllers.NewMediaController(logger, mediaService),
	}, httpdelivery.Auth{Verifier: jwt, Users: userService, Logger: logger})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpdelivery.Handler(mux, logger, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	jobs.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

// newCache returns Redis when REDIS_URL is set, otherwise an in-process LRU.
func newCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Cache, func(), error) {
	if cfg.RedisURL == "" {
		c, err := cache.NewLRU(cfg.CacheLRUSize)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using in-process cache", "size", cfg.CacheLRUSize)
		return c, func() {}, nil
	}
	c, client, err := cache.DialRedis(ctx, cfg.RedisURL, "chyrp")
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis cache")
	return c, func() { client.Close() }, nil
}
