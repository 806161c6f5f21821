// Command migrate initializes (or upgrades) the SQLite database schema and
// reports basic stats. Open runs the migrations; this tool exists so a
// deployment can prepare the database before starting the API or worker.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/finbotdev/finbot/internal/logger"
	"github.com/finbotdev/finbot/internal/store"
)

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("FINBOT_DB_PATH", "finbot.db"), "SQLite database path")
	flag.Parse()

	log := logger.New()

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", *dbPath).Msg("Migration failed")
	}
	defer st.Close()

	log.Info().Str("db_path", *dbPath).Msg("Database schema is up to date")
	fmt.Printf("Database ready at %s\n", *dbPath)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
