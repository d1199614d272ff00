package main

import (
	"room-access-control/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real environment takes precedence
	godotenv.Load()

	cmd.Execute()
}
