package main

import (
	"flag"
	"log"

	"learnhub/internal/pkg/config"
	"learnhub/pkg/database"
)

func main() {
	source := flag.String("path", "file://migrations", "migrations source url")
	down := flag.Int("down", 0, "roll back N versions instead of migrating up")
	flag.Parse()

	config.LoadConfig()
	url := database.URL(config.GlobalConfig.Database)

	if *down > 0 {
		if err := database.MigrateDown(*source, url, *down); err != nil {
			log.Fatal(err)
		}
		log.Printf("Rolled back %d version(s)", *down)
		return
	}

	if err := database.MigrateUp(*source, url); err != nil {
		log.Fatal(err)
	}
	log.Println("Migration successful")
}
