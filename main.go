package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"netrender/config"
	"netrender/database"
	"netrender/netstate"
	"netrender/networkd"
)

func main() {
	configFile := flag.String("config", "config.toml", "Path to configuration file")
	stateFile := flag.String("state", "network-state.yaml", "Path to network state file")
	generateConfig := flag.Bool("generate-config", false, "Generate a default config file and exit")
	dryRun := flag.Bool("dry-run", false, "Print rendered units instead of writing them")
	diff := flag.Bool("diff", false, "Show a unified diff against the files on disk")
	flag.Parse()

	if *generateConfig {
		if err := config.GenerateDefaultConfig(*configFile); err != nil {
			log.Fatalf("Failed to generate config: %v", err)
		}
		fmt.Printf("Generated config file at %s\n", *configFile)
		return
	}

	cfg := loadConfig(*configFile)

	ns, err := netstate.LoadState(*stateFile)
	if err != nil {
		log.Fatalf("Failed to load network state: %v", err)
	}

	renderer := networkd.New(networkd.Config{
		NetworkDir:      cfg.Render.NetworkDir,
		FileOwner:       cfg.Render.FileOwner,
		ResolveConfPath: cfg.Render.ResolveConf,
	})

	units, err := renderer.Render(ns)
	if err != nil {
		log.Fatalf("Failed to render network state: %v", err)
	}

	switch {
	case *dryRun:
		printUnits(units)
	case *diff:
		diffUnits(cfg, units)
	default:
		writeUnits(cfg, units)
	}
}

// loadConfig loads the TOML config, falling back to defaults when the
// default config file is absent.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == "config.toml" {
			return config.Default()
		}
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func printUnits(units []networkd.Unit) {
	for _, unit := range units {
		fmt.Printf("# %s\n%s\n", networkd.FileName(unit), unit.Contents)
	}
}

func diffUnits(cfg *config.Config, units []networkd.Unit) {
	writer := networkd.NewWriter(networkd.Config{NetworkDir: cfg.Render.NetworkDir})
	out, err := writer.Diff(units)
	if err != nil {
		log.Fatalf("Failed to diff units: %v", err)
	}
	if out == "" {
		log.Printf("No changes")
		return
	}
	fmt.Print(out)
}

func writeUnits(cfg *config.Config, units []networkd.Unit) {
	writer := networkd.NewWriter(networkd.Config{
		NetworkDir: cfg.Render.NetworkDir,
		FileOwner:  cfg.Render.FileOwner,
	})
	if err := writer.Write(units); err != nil {
		log.Fatalf("Failed to write units: %v", err)
	}

	if cfg.Ledger.Database == "" {
		return
	}

	db, err := database.NewDB(cfg.Ledger.Database)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer db.Close()

	for _, unit := range units {
		changed, err := db.RecordUnit(unit.Name, unit.Kind.String(), unit.Contents)
		if err != nil {
			log.Fatalf("Failed to record unit %s: %v", unit.Name, err)
		}
		if changed {
			log.Printf("Unit %s changed since last render", networkd.FileName(unit))
		}
	}
}
