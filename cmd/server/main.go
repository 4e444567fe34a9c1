package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/paukdv/web-14/internal/auth"
	"github.com/paukdv/web-14/internal/config"
	"github.com/paukdv/web-14/internal/database"
	"github.com/paukdv/web-14/internal/handlers"
	"github.com/paukdv/web-14/internal/middleware"
	"github.com/paukdv/web-14/internal/repository"
	"github.com/paukdv/web-14/internal/routes"
	"github.com/paukdv/web-14/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	db, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	redisClient, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Optional collaborators: avatars and confirmation mail. The API
	// degrades rather than refusing to start when they are missing.
	var uploader services.AvatarUploader
	if cfg.CloudinaryConfigured() {
		cloudinaryService, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Avatar uploads will not be available")
		} else {
			uploader = cloudinaryService
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Avatar uploads will not be available")
	}

	var mail services.EmailSender
	if cfg.MailConfigured() {
		mail = services.NewSMTPSender(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailFrom)
		log.Println("✅ SMTP sender configured")
	} else {
		log.Println("Warning: SMTP not configured. Confirmation emails will not be sent")
	}

	usersRepo := repository.NewUsersRepo(db)
	contactsRepo := repository.NewContactsRepo(db)
	userCache := services.NewRedisUserCache(redisClient)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.EmailTokenTTL)
	guard := middleware.NewGuard(tokens, usersRepo, userCache)

	// Setup router
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.ProcessTime)

	routes.Setup(r, routes.Deps{
		Health:    handlers.NewHealthHandler(db),
		Auth:      handlers.NewAuthHandler(usersRepo, tokens, userCache, mail, cfg.BaseURL),
		Users:     handlers.NewUsersHandler(usersRepo, userCache, uploader),
		Contacts:  handlers.NewContactsHandler(contactsRepo),
		Guard:     guard,
		RateLimit: middleware.RateLimit(redisClient, cfg.RateLimitRequests, cfg.RateLimitWindow),
		LoginRate: middleware.LoginRateLimit(),
	})

	log.Printf("🚀 Contacts API running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
