package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"itemViewerBack/internal/config"
	"itemViewerBack/internal/handlers"
	"itemViewerBack/internal/imaging"
	"itemViewerBack/internal/models"
	"itemViewerBack/internal/repositories"
	"itemViewerBack/internal/services"
	"itemViewerBack/utils"
)

type application struct {
	errorLog          *log.Logger
	infoLog           *log.Logger
	itemStore         *services.ItemStore
	itemHandler       *handlers.ItemHandler
	suggestionHandler *handlers.SuggestionHandler
	enquiryHandler    *handlers.EnquiryHandler
	healthHandler     *handlers.HealthHandler
}

// dependencies are the optional external clients; any of them may be nil.
type dependencies struct {
	itemSource services.ItemSource
	generator  services.ChatCompletionClient
	imageCache imaging.Cache
	uploader   handlers.ImageUploader
}

func initializeApp(cfg config.Config, deps dependencies, errorLog, infoLog *log.Logger) *application {
	// Services
	itemStore := services.NewItemStore(deps.itemSource, cfg.RemoteConfigured(), models.SeedItems(), infoLog, errorLog)
	inliner := imaging.NewInliner(nil, deps.imageCache)
	suggestionService := services.NewSuggestionService(deps.generator, inliner, errorLog)
	enquiryService := services.NewEnquiryService(deps.generator, infoLog)

	// Handlers
	itemHandler := &handlers.ItemHandler{Store: itemStore, Uploader: deps.uploader, ErrorLog: errorLog}
	suggestionHandler := &handlers.SuggestionHandler{Store: itemStore, Service: suggestionService}
	enquiryHandler := &handlers.EnquiryHandler{Store: itemStore, Service: enquiryService}
	healthHandler := &handlers.HealthHandler{Store: itemStore}

	return &application{
		errorLog:          errorLog,
		infoLog:           infoLog,
		itemStore:         itemStore,
		itemHandler:       itemHandler,
		suggestionHandler: suggestionHandler,
		enquiryHandler:    enquiryHandler,
		healthHandler:     healthHandler,
	}
}

// openDependencies builds the optional clients. A client that cannot be
// created is logged and left nil so the service still starts.
func openDependencies(ctx context.Context, cfg config.Config, errorLog, infoLog *log.Logger) (dependencies, func()) {
	var (
		deps    dependencies
		closers []func()
	)

	if cfg.RemoteConfigured() {
		client, err := openFirestore(ctx, cfg)
		if err != nil {
			errorLog.Printf("Failed to open Firestore for project %s: %v", cfg.Firebase.ProjectID, err)
		} else {
			infoLog.Printf("Connected to Firestore project %s", cfg.Firebase.ProjectID)
			deps.itemSource = &repositories.ItemRepository{Client: client, ErrorLog: errorLog}
			closers = append(closers, func() { _ = client.Close() })
		}
	} else {
		infoLog.Printf("FIREBASE_PROJECT_ID is not set, running with sample items only")
	}

	if cfg.AI.APIKey != "" {
		deps.generator = services.NewOpenAIClient(nil, cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)
	} else {
		infoLog.Printf("OPENAI_API_KEY is not set, suggestions and enquiries will fail")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := openRedis(ctx, cfg)
		if err != nil {
			errorLog.Printf("Failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		} else {
			deps.imageCache = repositories.NewImageCacheRepository(rdb, cfg.Redis.ImageTTL, errorLog)
			closers = append(closers, func() { _ = rdb.Close() })
		}
	}

	if cfg.Storage.Bucket != "" {
		uploader, err := utils.NewImageUploader(utils.StorageConfig{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			errorLog.Printf("Failed to configure image storage: %v", err)
		} else {
			deps.uploader = uploader
		}
	}

	return deps, func() {
		for _, c := range closers {
			c()
		}
	}
}

func openFirestore(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Firestore(ctx)
}

func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "cross-origin")
		next.ServeHTTP(w, r)
	})
}
