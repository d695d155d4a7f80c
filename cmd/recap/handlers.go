package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/boozer-app/recap/internal/config"
	"github.com/boozer-app/recap/internal/logger"
	"github.com/boozer-app/recap/internal/store"
	"github.com/boozer-app/recap/pkg/classify"
	"github.com/boozer-app/recap/pkg/dataset"
	"github.com/boozer-app/recap/pkg/recap"
	"github.com/boozer-app/recap/pkg/server"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func buildClassifier(cfg *config.Config) classify.Classifier {
	if !cfg.Classify.Enabled || cfg.Classify.APIKey == "" {
		return nil
	}
	return classify.NewLLMClassifier(
		cfg.Classify.Provider,
		cfg.Classify.Model,
		cfg.Classify.APIKey,
		cfg.Classify.BaseURL,
		uint64(cfg.Classify.MaxRetries),
		cfg.Classify.ParseRetryDelay(),
	)
}

func recapOptions(cfg *config.Config) recap.Options {
	opts := recap.DefaultOptions()
	opts.TopItems = cfg.Recap.TopItems
	opts.TopCategories = cfg.Recap.TopCategories
	opts.WeekAnchor = cfg.Recap.ParseWeekAnchor()
	return opts
}

func runExport() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	items, err := db.ListItems(ctx)
	if err != nil {
		return err
	}
	users, err := db.ListUsers(ctx)
	if err != nil {
		return err
	}
	consumptions, err := db.ListConsumptions(ctx)
	if err != nil {
		return err
	}

	if err := dataset.WriteFile(cfg.Data.ItemsPath, items); err != nil {
		return err
	}
	if err := dataset.WriteFile(cfg.Data.UsersPath, users); err != nil {
		return err
	}
	if err := dataset.WriteFile(cfg.Data.ConsumptionsPath, consumptions); err != nil {
		return err
	}

	log.WithField("items", len(items)).
		WithField("users", len(users)).
		WithField("consumptions", len(consumptions)).
		Info("exported tables")
	return nil
}

func runClassify() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	classifier := buildClassifier(cfg)
	if classifier == nil {
		return fmt.Errorf("classification requires an API key (set GEMINI_API_KEY or OPENAI_API_KEY)")
	}

	var items []dataset.Item
	if err := dataset.ReadFile(cfg.Data.ItemsPath, &items); err != nil {
		return err
	}

	cache := classify.LoadCache(cfg.Data.CachePath)
	before := cache.Len()

	merger := classify.NewMerger(cache, classifier, cfg.Classify.ParseRateDelay(), log)
	if _, err := merger.Merge(context.Background(), items); err != nil {
		return err
	}

	log.WithField("items", len(items)).
		WithField("newly_classified", cache.Len()-before).
		Info("classification complete")
	return nil
}

func runGenerate(importDB bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	// Load failure on any table is fatal: either all three tables load or
	// nothing is emitted.
	tables, err := dataset.LoadTables(cfg.Data.ItemsPath, cfg.Data.UsersPath, cfg.Data.ConsumptionsPath)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	log.WithField("items", len(tables.Items)).
		WithField("users", len(tables.Users)).
		WithField("consumptions", len(tables.Consumptions)).
		Info("tables loaded")

	cache := classify.LoadCache(cfg.Data.CachePath)
	merger := classify.NewMerger(cache, buildClassifier(cfg), cfg.Classify.ParseRateDelay(), log)
	tables.Items, err = merger.Merge(context.Background(), tables.Items)
	if err != nil {
		return fmt.Errorf("merge catalog: %w", err)
	}

	gen := recap.NewGenerator(tables, recapOptions(cfg))

	global := gen.GlobalRecap()
	if err := dataset.WriteFile(cfg.Data.GlobalRecapPath, global); err != nil {
		return err
	}
	log.WithField("path", cfg.Data.GlobalRecapPath).Info("global recap written")

	recaps := gen.UserRecaps()
	if err := dataset.WriteFile(cfg.Data.UserRecapsPath, recaps); err != nil {
		return err
	}
	log.WithField("path", cfg.Data.UserRecapsPath).
		WithField("active_users", len(recaps)).
		Info("user recaps written")

	if importDB {
		return importRecaps(cfg, recaps)
	}
	return nil
}

func runImport() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var recaps []recap.UserRecap
	if err := dataset.ReadFile(cfg.Data.UserRecapsPath, &recaps); err != nil {
		return err
	}
	return importRecaps(cfg, recaps)
}

func importRecaps(cfg *config.Config, recaps []recap.UserRecap) error {
	log := logger.New()

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	for _, r := range recaps {
		data, err := json.Marshal(r.Recap)
		if err != nil {
			return fmt.Errorf("marshal recap for user %d: %w", r.UserID, err)
		}
		if err := db.SaveRecap(ctx, r.UserID, data); err != nil {
			return err
		}
	}

	log.WithField("recaps", len(recaps)).Info("recaps imported")
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New()

	if port == 0 {
		port = cfg.Server.Port
	}

	var global recap.GlobalRecap
	if err := dataset.ReadFile(cfg.Data.GlobalRecapPath, &global); err != nil {
		return fmt.Errorf("load global recap (run generate first): %w", err)
	}
	var recaps []recap.UserRecap
	if err := dataset.ReadFile(cfg.Data.UserRecapsPath, &recaps); err != nil {
		return fmt.Errorf("load user recaps (run generate first): %w", err)
	}

	srv := server.New(&global, recaps, port, log)
	return srv.ListenAndServe()
}
