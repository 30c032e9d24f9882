package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ============================================================================
// VIZFORGE CLI — Chart building from the terminal
// ============================================================================

const version = "0.3.0"

func main() {
	// Best-effort: a missing .env is fine, GEMINI_API_KEY may come from the
	// real environment.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
