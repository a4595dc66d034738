package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lostfound/internal/blob"
	"lostfound/internal/config"
	"lostfound/internal/domain"
	"lostfound/internal/httpserver"
	"lostfound/internal/mailer"
	"lostfound/internal/security"
	"lostfound/internal/store/sqlite"
	"lostfound/internal/ws"
)

// @title           Lost & Found API
// @version         1.0
// @description     Backend API for the Lost & Found application.

// @host            localhost:8000
// @BasePath        /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.TokenExpireHours)*time.Hour)
	passwordHasher := security.NewPasswordHasher(cfg.BcryptCost)

	encryptor, err := security.NewEncryptor([]byte(cfg.EncryptKey))
	if err != nil {
		log.Fatalf("failed to initialize encryptor: %v", err)
	}

	if err := seedAdmin(db, cfg, passwordHasher); err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}

	var mail mailer.Mailer = mailer.Discard{}
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Println("SMTP credentials not set; outbound mail disabled")
	}

	blobs, err := blob.NewDiskStore(cfg.UploadDir, "/api/uploads")
	if err != nil {
		log.Fatalf("failed to initialize upload store: %v", err)
	}

	hub := ws.NewHub()

	router := httpserver.NewRouter(cfg, db, hub, tokenSvc, passwordHasher, encryptor, mail, blobs)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Lost & Found server on %s", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// seedAdmin creates the single admin identity on first start. The
// workflows assume exactly one admin, so signup never grants the flag.
func seedAdmin(db *sql.DB, cfg *config.Config, hasher *security.PasswordHasher) error {
	users := sqlite.NewUserRepo(db)
	ctx := context.Background()

	admin, err := users.GetAdmin(ctx)
	if err != nil {
		return err
	}
	if admin != nil {
		return nil
	}
	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set; admin account not created")
		return nil
	}

	hashed, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if err := users.Create(ctx, &domain.User{
		Username:       cfg.AdminUsername,
		Email:          cfg.AdminEmail,
		HashedPassword: hashed,
		IsAdmin:        true,
		IsVerified:     true,
	}); err != nil {
		return err
	}
	log.Printf("Admin account %q created", cfg.AdminUsername)
	return nil
}
