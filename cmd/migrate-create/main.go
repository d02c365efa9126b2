// Command migrate-create stamps a new pair of up/down migration files.
//
//	go run ./cmd/migrate-create add_queue_index
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const migrationsDir = "db/migrations"

var namePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <migration_name>", filepath.Base(os.Args[0]))
	}
	name := os.Args[1]
	if !namePattern.MatchString(name) {
		log.Fatal("migration name must be lowercase letters, digits and underscores")
	}

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}

	stamp := time.Now().UTC().Format("20060102150405")
	for _, direction := range []string{"up", "down"} {
		path := filepath.Join(migrationsDir, fmt.Sprintf("%s_%s.%s.sql", stamp, name, direction))
		if err := createEmpty(path); err != nil {
			log.Fatalf("create %s migration: %v", direction, err)
		}
		log.Printf("created %s", path)
	}
}

func createEmpty(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}
