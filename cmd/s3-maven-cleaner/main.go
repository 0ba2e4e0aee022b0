package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mattjoyce/s3-maven-cleaner/internal/config"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	switch cmd {
	case "run":
		if hasHelpFlag(args) {
			printRunHelp()
			return 0
		}
		return runClean(args)
	case "plan":
		if hasHelpFlag(args) {
			printPlanHelp()
			return 0
		}
		return runPlan(args)
	case "serve":
		if hasHelpFlag(args) {
			printServeHelp()
			return 0
		}
		return runServe(args)

	// --- NOUNS ---
	case "config":
		return runConfigNoun(args)
	case "store":
		return runStoreNoun(args)

	case "version", "--version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: s3-maven-cleaner version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("s3-maven-cleaner %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalized, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalized
	}
	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// loadConfig reads configPath, or starts from Defaults when it is empty.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		cfg := config.Defaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(configPath)
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printUsage() {
	fmt.Print(`s3-maven-cleaner - Prune stale Maven snapshots from an S3 repository

Usage:
  s3-maven-cleaner <command> [flags]

Commands:
  run               Run one cleaning pass
  plan              Show what a pass would delete (dry run)
  serve             Run passes on a cron schedule and on signed webhooks

Config Commands:
  config check      Validate configuration and print its digest

Store Commands:
  store import      Load a local directory tree into a sqlite bucket

General:
  version           Show version information
  help              Show this help message

Without --config the bucket is some-maven-repository in us-east-1.
Use 's3-maven-cleaner <command> --help' for command flags.
`)
}

func printRunHelp() {
	fmt.Println("Usage: s3-maven-cleaner run [--config PATH] [--bucket NAME] [--region REGION] [--prefix PREFIX]")
	fmt.Println("                            [--dry-run] [--fail-fast] [--json] [--log-level LEVEL]")
	fmt.Println("Run one cleaning pass and print its report.")
	fmt.Println("")
	fmt.Println("Exit codes:")
	fmt.Println("  0  Every artifact was processed")
	fmt.Println("  1  The pass failed or an artifact could not be cleaned")
}

func printPlanHelp() {
	fmt.Println("Usage: s3-maven-cleaner plan [--config PATH] [--bucket NAME] [--region REGION] [--prefix PREFIX] [--keys] [--json]")
	fmt.Println("Run a dry-run pass and show the keys that would be deleted. Nothing is removed.")
}

func printServeHelp() {
	fmt.Println("Usage: s3-maven-cleaner serve [--config PATH]")
	fmt.Println("Run passes on schedule.cron and on POST to webhook.path, and expose /status and /metrics.")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: s3-maven-cleaner config <action> [flags]")
	fmt.Fprintln(w, "Actions: check")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: s3-maven-cleaner config check --config PATH [--digest HEX]")
	fmt.Println("Validate the configuration file. With --digest, also verify the file has not changed.")
}

func printStoreNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: s3-maven-cleaner store <action> [flags]")
	fmt.Fprintln(w, "Actions: import")
}

func printStoreImportHelp() {
	fmt.Println("Usage: s3-maven-cleaner store import --config PATH [--prefix PREFIX] DIR")
	fmt.Println("Copy every file under DIR into the configured sqlite bucket.")
}
