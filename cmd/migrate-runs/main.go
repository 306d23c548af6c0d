// migrate-runs copies recorded generation runs from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-runs \
//	    -sqlite data/procgen.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user procgen \
//	    -pg-password procgen \
//	    -pg-database procgen
package main

import (
	"flag"
	"log"

	"github.com/lawnchairsociety/procgen/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/procgen.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "procgen", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "procgen", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	batchSize := flag.Int("batch", 500, "Runs read per query")
	dryRun := flag.Bool("dry-run", false, "Count the runs that would be copied without writing")
	flag.Parse()

	log.Println("Run history migration: SQLite to PostgreSQL")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	pg := database.DefaultPostgresConfig()
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	// Opening runs the schema migrations on PostgreSQL
	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := database.OpenWithConfig(database.Config{Driver: "postgres", Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	total, succeeded, err := src.CountRuns()
	if err != nil {
		log.Fatalf("Failed to count source runs: %v", err)
	}
	log.Printf("Source holds %d runs (%d succeeded)", total, succeeded)

	copied, err := database.CopyRuns(src, dst, *batchSize, *dryRun)
	if err != nil {
		log.Fatalf("Migration stopped after %d runs: %v", copied, err)
	}

	log.Printf("Migration complete! Runs copied: %d", copied)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}
