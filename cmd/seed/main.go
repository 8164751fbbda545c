// Command seed fills the database with demo journals.
package main

import (
	"context"
	"flag"
	"log"

	"journals/internal/config"
	"journals/internal/database"
	"journals/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	journalsPerUser := flag.Int("journals", defaults.JournalsPerUser, "Journals per user")
	postsPerJournal := flag.Int("posts", defaults.PostsPerJournal, "Posts per journal")
	privatePercent := flag.Int("private", defaults.PrivatePercent, "Percentage of private journals")
	randSeed := flag.Int64("seed", 0, "Random seed for a reproducible run (0 = clock)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip password hashing (throwaway databases only)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	opts := defaults
	opts.NumUsers = *numUsers
	opts.JournalsPerUser = *journalsPerUser
	opts.PostsPerJournal = *postsPerJournal
	opts.PrivatePercent = *privatePercent
	opts.RandSeed = *randSeed
	opts.SkipBcrypt = *fast

	s := seed.NewSeeder(db, opts)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d journals, %d posts, %d comments, %d follows",
		sum.Users, sum.Journals, sum.Posts, sum.Comments, sum.Follows)
	for id, pin := range sum.PINs {
		log.Printf("journal %d PIN: %s", id, pin)
	}
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
