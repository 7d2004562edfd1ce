package main

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"crawl"
	"crawl/csvtable"
	"crawl/engine"
	"crawl/store"
)

type config struct {
	DBPath       string `env:"CRAWL_DB"`
	TableDir     string `env:"CRAWL_TABLE_DIR" envDefault:"."`
	Seed         int64  `env:"CRAWL_SEED"`
	MaxCallDepth int    `env:"CRAWL_MAX_CALL_DEPTH" envDefault:"64"`
}

type consoleSink struct{}

func (consoleSink) Emit(ev engine.Event) {
	switch ev.Kind {
	case engine.EventReminder:
		fmt.Printf("reminder: %s\n", ev.Text)
	case engine.EventTableRoll:
		fmt.Printf("%s: %s\n", ev.Table, ev.Text)
	}
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	root := &cobra.Command{
		Use:   "crawl",
		Short: "Run crawl scripts for dice-driven tabletop events",
	}
	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database for persistent facts (default: $CRAWL_DB)")
	root.PersistentFlags().StringVar(&cfg.TableDir, "tables", cfg.TableDir, "Directory containing CSV tables")
	root.PersistentFlags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Dice seed (0 seeds from the clock)")
	root.PersistentFlags().IntVar(&cfg.MaxCallDepth, "max-call-depth", cfg.MaxCallDepth, "Maximum procedure call depth")

	root.AddCommand(&cobra.Command{
		Use:   "run <script>",
		Short: "Execute a crawl script",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScript(cfg, args[0])
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScript(cfg config, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var storage engine.FactStorage
	if cfg.DBPath != "" {
		st, err := store.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		id, err := st.BeginRun(path)
		if err != nil {
			return err
		}
		fmt.Printf("run %s\n", id)
		storage = st
	}

	opts := []engine.Option{
		engine.WithSink(consoleSink{}),
		engine.WithMaxCallDepth(cfg.MaxCallDepth),
	}
	if cfg.Seed != 0 {
		opts = append(opts, engine.WithDice(engine.NewSeededDice(cfg.Seed)))
	}

	c, err := crawl.New(csvtable.New(cfg.TableDir), storage, opts...)
	if err != nil {
		return err
	}
	_, err = c.Execute(string(src))
	return err
}
