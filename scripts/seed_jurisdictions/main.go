package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/nplvision/sol-engine/internal/models"
	"github.com/nplvision/sol-engine/internal/repository"
	"github.com/nplvision/sol-engine/pkg/config"
	"github.com/nplvision/sol-engine/pkg/database"
)

type rulesFile struct {
	Rules []models.JurisdictionRule `json:"rules"`
}

func main() {
	var (
		rulesPath string
		dryRun    bool
		timeout   time.Duration
	)

	flag.StringVar(&rulesPath, "rules", filepath.Join("scripts", "seed_jurisdictions", "rules.json"), "Path to JSON rules file")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the rules file without writing")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	rules, err := loadRules(rulesPath)
	if err != nil {
		log.Fatalf("failed to load rules: %v", err)
	}
	if dryRun {
		fmt.Printf("rules file OK: %d jurisdictions\n", len(rules))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	repo := repository.NewJurisdictionRepository(db)
	for i := range rules {
		rule := &rules[i]
		if err := repo.Upsert(ctx, rule); err != nil {
			log.Fatalf("failed to upsert %s: %v", rule.StateCode, err)
		}
		fmt.Printf("seeded %s (%s, %d-year period)\n", rule.StateCode, rule.RiskTier, rule.StatutoryYears(0))
	}
	fmt.Printf("seeded %d jurisdictions\n", len(rules))
}

func loadRules(path string) ([]models.JurisdictionRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file rulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("no rules in %s", path)
	}
	for _, rule := range file.Rules {
		if rule.StateCode == "" {
			return nil, fmt.Errorf("rule without state_code in %s", path)
		}
		if !rule.Usable() {
			return nil, fmt.Errorf("rule %s has no statutory period", rule.StateCode)
		}
	}
	return file.Rules, nil
}
