package main

import (
	"github.com/gatherly/server/cmd/server/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment itself takes precedence.
	_ = godotenv.Load()

	cmd.Execute()
}
