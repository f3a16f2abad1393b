package main

import (
	"github.com/attendly/server/cmd/server/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is not an error; production gets config from the
	// environment directly.
	_ = godotenv.Load()

	cmd.Execute()
}
