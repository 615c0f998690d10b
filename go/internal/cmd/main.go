package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("courtside failed")
		os.Exit(1)
	}
}
