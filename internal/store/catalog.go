package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"local-library/internal/models"
)

const (
	AuthorsCollection       = "authors"
	BooksCollection         = "books"
	BookInstancesCollection = "bookinstances"
	GenresCollection        = "genres"
	AuditLogsCollection     = "audit_logs"
)

// Catalog groups the collections of every record kind.
type Catalog struct {
	Authors   Collection[models.Author]
	Books     Collection[models.Book]
	Instances Collection[models.BookInstance]
	Genres    Collection[models.Genre]
	AuditLogs Collection[models.AuditLog]
}

func NewMongoCatalog(db *mongo.Database) *Catalog {
	return &Catalog{
		Authors:   NewMongo[models.Author](db.Collection(AuthorsCollection)),
		Books:     NewMongo[models.Book](db.Collection(BooksCollection)),
		Instances: NewMongo[models.BookInstance](db.Collection(BookInstancesCollection)),
		Genres:    NewMongo[models.Genre](db.Collection(GenresCollection)),
		AuditLogs: NewMongo[models.AuditLog](db.Collection(AuditLogsCollection)),
	}
}

func NewMemoryCatalog() *Catalog {
	return &Catalog{
		Authors:   NewMemory[models.Author](AuthorsCollection),
		Books:     NewMemory[models.Book](BooksCollection),
		Instances: NewMemory[models.BookInstance](BookInstancesCollection),
		Genres:    NewMemory[models.Genre](GenresCollection, "name"),
		AuditLogs: NewMemory[models.AuditLog](AuditLogsCollection),
	}
}

// EnsureIndexes creates the unique genre name index and the reference
// indexes the dependent-record lookups filter on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(GenresCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := db.Collection(BooksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := db.Collection(BookInstancesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "book", Value: 1}},
	})
	return err
}

func (c *Catalog) ResolveBookAuthors(ctx context.Context, books []models.Book) error {
	return PopulateOne(ctx, books, c.Authors,
		func(b models.Book) primitive.ObjectID { return b.AuthorID },
		func(b *models.Book, a models.Author) { b.Author = &a },
	)
}

func (c *Catalog) ResolveBookGenres(ctx context.Context, books []models.Book) error {
	return PopulateMany(ctx, books, c.Genres,
		func(b models.Book) []primitive.ObjectID { return b.GenreIDs },
		func(b *models.Book, genres []models.Genre) { b.Genres = genres },
	)
}

func (c *Catalog) ResolveInstanceBooks(ctx context.Context, instances []models.BookInstance) error {
	return PopulateOne(ctx, instances, c.Books,
		func(bi models.BookInstance) primitive.ObjectID { return bi.BookID },
		func(bi *models.BookInstance, b models.Book) { bi.Book = &b },
	)
}
