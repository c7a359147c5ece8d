package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"bookinventory/internal/book"
	"bookinventory/internal/platform/bookclient"
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:8080", "Catalogue API base URL")
		count   = flag.Int("count", 100, "Number of books to create")
		rps     = flag.Float64("rps", 10, "Requests per second")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client := bookclient.NewClient(*baseURL, bookclient.WithRateLimit(*rps))
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	log.Printf("Creating %d books via %s...", *count, *baseURL)
	for i := 0; i < *count; i++ {
		if _, err := client.CreateOrUpdateBook(ctx, randomBook(rng, i)); err != nil {
			log.Fatalf("Failed to create book %d: %v", i+1, err)
		}
		if (i+1)%25 == 0 {
			log.Printf("Created %d/%d books", i+1, *count)
		}
	}

	books, err := client.ListBooks(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to list books: %v", err)
	}
	log.Printf("Total books in catalogue: %d", len(books))
}

var authors = []string{
	"Frank Herbert", "Ursula K. Le Guin", "Octavia E. Butler", "Isaac Asimov",
	"Mary Shelley", "Jorge Luis Borges", "Toni Morrison", "Italo Calvino",
}

func randomBook(rng *rand.Rand, i int) book.Book {
	stock := rng.Intn(50)
	return book.Book{
		Name:        fmt.Sprintf("%s %s %d", randomWord(rng), randomWord(rng), i+1),
		Author:      authors[rng.Intn(len(authors))],
		Description: fmt.Sprintf("A book about %s.", randomWord(rng)),
		Price:       float64(100+rng.Intn(4900)) / 100,
		Image:       fmt.Sprintf("https://covers.example/%d.jpg", i+1),
		Stock:       &stock,
	}
}

func randomWord(rng *rand.Rand) string {
	words := []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	return words[rng.Intn(len(words))]
}
