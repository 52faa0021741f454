// Package main provides the entry point for the worker profile wizard service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profile_wizard",
	Short: "Worker profile setup wizard service",
	Long: `Profile wizard runs the 8-step profile setup form for foreign job seekers in Korea.
Wizard sessions live in Redis (or memory), saved profiles in PostgreSQL, attachments in S3,
and lifecycle events are published to Kafka.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
