package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
	"github.com/mattjoyce/s3-maven-cleaner/internal/objectstore/sqlitestore"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	digest := fs.String("digest", "", "Expected BLAKE3 digest of the file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: s3-maven-cleaner config check --config PATH [--digest HEX]")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		return 1
	}
	if *digest != "" {
		if err := config.VerifyDigest(cfg, *digest); err != nil {
			fmt.Fprintf(os.Stderr, "Integrity check failed: %v\n", err)
			return 1
		}
	}

	fmt.Printf("Config: %s\n", cfg.Path)
	fmt.Printf("Digest: %s\n", cfg.Digest)
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		fmt.Printf("Store: sqlite %s\n", cfg.Store.Path)
	default:
		fmt.Printf("Store: s3://%s (%s)\n", cfg.Store.Bucket, cfg.Store.Region)
	}
	fmt.Printf("Prefix: %s\n", cfg.Cleaner.Prefix)
	fmt.Println("Status: Configuration check PASSED.")
	return 0
}

func runStoreNoun(args []string) int {
	if len(args) < 1 {
		printStoreNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printStoreNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "import":
		if hasHelpFlag(actionArgs) {
			printStoreImportHelp()
			return 0
		}
		return runStoreImport(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown store action: %s\n", action)
		return 1
	}
}

func runStoreImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	prefix := fs.String("prefix", "", "Key prefix for imported files")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: s3-maven-cleaner store import --config PATH [--prefix PREFIX] DIR")
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if cfg.Store.Backend != config.BackendSQLite {
		fmt.Fprintf(os.Stderr, "store import needs the sqlite backend (got %s)\n", cfg.Store.Backend)
		return 1
	}

	ctx := context.Background()
	store, err := sqlitestore.Open(ctx, cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		return 1
	}
	defer store.Close()

	n, err := store.ImportDir(ctx, fs.Arg(0), *prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed after %d objects: %v\n", n, err)
		return 1
	}
	fmt.Printf("Imported %d objects into %s\n", n, cfg.Store.Path)
	return 0
}
