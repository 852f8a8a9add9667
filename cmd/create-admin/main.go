package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/database"
	"github.com/smsi-platform/smsi-backend/internal/logger"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg, userRepo, nil, log)
	userService := service.NewUserService(userRepo, authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	fmt.Println() // Newline after password input

	req := &model.CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: string(bytePassword),
		Role:     model.RoleAdmin,
	}
	if err := validator.New().Struct(req); err != nil {
		fmt.Printf("Error: %s\n", validator.Translate(err))
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := userService.Create(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			fmt.Printf("Error: an account with email %s already exists\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", user.Name, user.Email, user.ID)
}
