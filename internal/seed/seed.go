// Package seed fills an empty catalog with a small sample library.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"local-library/internal/aggregate"
	"local-library/internal/models"
	"local-library/internal/store"
)

// ErrNotEmpty is returned when the catalog already holds records.
var ErrNotEmpty = errors.New("catalog is not empty")

type Summary struct {
	Authors   int
	Genres    int
	Books     int
	Instances int
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var authors = []models.Author{
	{FirstName: "Patrick", FamilyName: "Rothfuss", DateOfBirth: date(1973, time.June, 6)},
	{FirstName: "Ben", FamilyName: "Bova", DateOfBirth: date(1932, time.November, 8)},
	{FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: date(1920, time.January, 2), DateOfDeath: date(1992, time.April, 6)},
	{FirstName: "Bob", FamilyName: "Billings"},
	{FirstName: "Jim", FamilyName: "Jones", DateOfBirth: date(1971, time.December, 16)},
}

var genres = []string{"Fantasy", "Science Fiction", "French Poetry"}

type bookSeed struct {
	title, summary, isbn string
	author               int
	genres               []int
}

var books = []bookSeed{
	{"The Name of the Wind (The Kingkiller Chronicle, #1)", "I have stolen princesses back from sleeping barrow kings. I burned down the town of Trebon.", "9781473211896", 0, []int{0}},
	{"The Wise Man's Fear (The Kingkiller Chronicle, #2)", "Picking up the tale of Kvothe Kingkiller once again.", "9788401352836", 0, []int{0}},
	{"The Slow Regard of Silent Things (Kingkiller Chronicle)", "Deep below the University, there is a dark place.", "9780756411336", 0, []int{0}},
	{"Apes and Angels", "Humankind headed out to the stars not for conquest, nor exploration, nor even for curiosity.", "9780765379528", 1, []int{1}},
	{"Death Wave", "In Ben Bova's previous novel New Earth, Jordan Kell led the first human mission beyond the solar system.", "9780765379504", 1, []int{1}},
	{"Test Book 1", "Summary of test book 1", "ISBN111111", 4, []int{0, 1}},
	{"Test Book 2", "Summary of test book 2", "ISBN222222", 4, nil},
}

type instanceSeed struct {
	book    int
	imprint string
	status  models.InstanceStatus
}

var instances = []instanceSeed{
	{0, "London Gollancz, 2014.", models.StatusAvailable},
	{1, " Gollancz, 2011.", models.StatusLoaned},
	{2, " Gollancz, 2015.", models.StatusMaintenance},
	{3, "New York Tom Doherty Associates, 2016.", models.StatusAvailable},
	{3, "New York Tom Doherty Associates, 2016.", models.StatusAvailable},
	{3, "New York Tom Doherty Associates, 2016.", models.StatusAvailable},
	{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.StatusAvailable},
	{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.StatusMaintenance},
	{4, "New York, NY Tom Doherty Associates, LLC, 2015.", models.StatusLoaned},
	{0, "Imprint XXX2", models.StatusMaintenance},
	{1, "Imprint XXX3", models.StatusReserved},
}

// Run inserts the sample library. Authors and genres go in first, then the
// books that reference them, then the copies of those books.
func Run(ctx context.Context, catalog *store.Catalog, now time.Time) (Summary, error) {
	counts, err := aggregate.Run(ctx, aggregate.Tasks{
		"authors": aggregate.Query(func(ctx context.Context) (int64, error) { return catalog.Authors.Count(ctx, nil) }),
		"genres":  aggregate.Query(func(ctx context.Context) (int64, error) { return catalog.Genres.Count(ctx, nil) }),
		"books":   aggregate.Query(func(ctx context.Context) (int64, error) { return catalog.Books.Count(ctx, nil) }),
	})
	if err != nil {
		return Summary{}, err
	}
	for name := range counts {
		if aggregate.Get[int64](counts, name) > 0 {
			return Summary{}, fmt.Errorf("%w: %s already stored", ErrNotEmpty, name)
		}
	}

	authorIDs := make([]primitive.ObjectID, len(authors))
	for i, a := range authors {
		created, err := catalog.Authors.Insert(ctx, a)
		if err != nil {
			return Summary{}, fmt.Errorf("seed author %s: %w", a.Name(), err)
		}
		authorIDs[i] = created.ID
	}

	genreIDs := make([]primitive.ObjectID, len(genres))
	for i, name := range genres {
		created, err := catalog.Genres.Insert(ctx, models.Genre{Name: name})
		if err != nil {
			return Summary{}, fmt.Errorf("seed genre %s: %w", name, err)
		}
		genreIDs[i] = created.ID
	}

	bookIDs := make([]primitive.ObjectID, len(books))
	for i, b := range books {
		book := models.Book{
			Title:    b.title,
			Summary:  b.summary,
			ISBN:     b.isbn,
			AuthorID: authorIDs[b.author],
			GenreIDs: []primitive.ObjectID{},
		}
		for _, g := range b.genres {
			book.GenreIDs = append(book.GenreIDs, genreIDs[g])
		}
		created, err := catalog.Books.Insert(ctx, book)
		if err != nil {
			return Summary{}, fmt.Errorf("seed book %s: %w", b.title, err)
		}
		bookIDs[i] = created.ID
	}

	for _, bi := range instances {
		instance := models.NewBookInstance(bookIDs[bi.book], bi.imprint, now)
		instance.Status = bi.status
		if _, err := catalog.Instances.Insert(ctx, instance); err != nil {
			return Summary{}, fmt.Errorf("seed book instance %s: %w", bi.imprint, err)
		}
	}

	return Summary{
		Authors:   len(authors),
		Genres:    len(genres),
		Books:     len(books),
		Instances: len(instances),
	}, nil
}
