package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files with priority: .env.local > .env.
// godotenv.Load never overwrites variables that are already set, so the
// process environment wins over both files. Returns the files that were loaded.
func LoadDotEnv(dir ...string) []string {
	base := "."
	if len(dir) > 0 && dir[0] != "" {
		base = dir[0]
	}

	var loaded []string
	for _, name := range []string{".env.local", ".env"} {
		f := base + string(os.PathSeparator) + name
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
