package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadEnvFiles applies dotenv files in order and returns the ones it read.
// ENV_FILE, when set, is read first. Variables already in the environment
// are never overwritten.
func loadEnvFiles(paths ...string) []string {
	if extra := strings.TrimSpace(os.Getenv("ENV_FILE")); extra != "" {
		paths = append([]string{extra}, paths...)
	}
	var loaded []string
	for _, p := range paths {
		err := godotenv.Load(p)
		switch {
		case err == nil:
			loaded = append(loaded, p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Printf("skipping env file %s: %v", p, err)
		}
	}
	return loaded
}
