package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quizforge/quiz_api/seed/seeders"
	"github.com/quizforge/quiz_api/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, users, quizzes")
		dbPath   = flag.String("db", "", "Sqlite database path (overrides DB_NAME env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databasePath := *dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_NAME")
		if databasePath == "" {
			databasePath = "quiz.db"
		}
	}

	db, err := services.OpenSqlite(databasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Printf("Connected to database: %s", databasePath)

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "users":
		log.Println("Seeding users only...")
		if err := mainSeeder.SeedUsers(); err != nil {
			log.Fatalf("Failed to seed users: %v", err)
		}
	case "quizzes":
		log.Println("Seeding quizzes only...")
		if err := mainSeeder.SeedQuizzes(); err != nil {
			log.Fatalf("Failed to seed quizzes: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'users', or 'quizzes'", *seedType)
	}

	log.Println("Seeding completed")
}

func showHelp() {
	log.Println("Usage: seed [-type all|users|quizzes] [-db path/to/quiz.db]")
}
