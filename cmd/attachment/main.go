package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// .env is optional; variables already in the environment win
	_ = godotenv.Load()
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}
