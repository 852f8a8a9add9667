package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/database"
	"github.com/smsi-platform/smsi-backend/internal/logger"
	"github.com/smsi-platform/smsi-backend/internal/repository"
	"github.com/smsi-platform/smsi-backend/internal/service"
	"github.com/smsi-platform/smsi-backend/internal/validator"
	"github.com/xuri/excelize/v2"
)

func main() {
	var (
		path     string
		template bool
		dryRun   bool
	)
	flag.StringVar(&path, "file", "modules.xlsx", "Workbook with Modules and Questions sheets")
	flag.BoolVar(&template, "template", false, "Write an example workbook to -file and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the workbook without writing to the database")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if template {
		if err := writeTemplate(path); err != nil {
			log.Fatal().Err(err).Msg("Failed to write template")
		}
		fmt.Printf("Template written to %s\n", path)
		return
	}

	// ─── Parse & Validate ──────────────────────────────────────────────
	f, err := excelize.OpenFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to open workbook")
	}
	defer f.Close()

	modules, err := parseWorkbook(f)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid workbook")
	}

	v := validator.New()
	for _, m := range modules {
		if err := v.Struct(&m.Request); err != nil {
			log.Fatal().Str("module", m.Request.Title).Msg(validator.Translate(err))
		}
		for i := range m.Questions {
			if err := v.Struct(&m.Questions[i]); err != nil {
				log.Fatal().Str("module", m.Request.Title).Int("question", i+1).Msg(validator.Translate(err))
			}
		}
	}

	fmt.Printf("=== %d module(s) parsed from %s ===\n", len(modules), path)
	if dryRun {
		for _, m := range modules {
			fmt.Printf("  %s (%d questions)\n", m.Request.Title, len(m.Questions))
		}
		return
	}

	// ─── Import ────────────────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	quizRepo := repository.NewQuizRepository(pool)
	moduleService := service.NewModuleService(
		repository.NewModuleRepository(pool),
		quizRepo,
		repository.NewResultRepository(pool),
		service.NewQuestionCache(quizRepo, nil, cfg.QuestionCacheTTL, log),
		log,
	)

	for _, m := range modules {
		created, err := moduleService.Create(ctx, &m.Request)
		if err != nil {
			log.Fatal().Err(err).Str("module", m.Request.Title).Msg("Failed to create module")
		}
		n, err := moduleService.ImportQuestions(ctx, created.ID, m.Questions)
		if err != nil {
			log.Fatal().Err(err).Str("module", m.Request.Title).Msg("Failed to import questions")
		}
		fmt.Printf("  #%d %s: %d question(s)\n", created.ID, created.Title, n)
	}

	fmt.Println("Seeding complete")
}
