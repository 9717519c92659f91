package handlers

import (
	"local-library/internal/models"
	"local-library/internal/validation"
)

type ErrorView struct {
	Title     string
	Status    int
	Message   string
	RequestID string
}

type IndexView struct {
	Title                      string
	BookCount                  int64
	BookInstanceCount          int64
	BookInstanceAvailableCount int64
	AuthorCount                int64
	GenreCount                 int64
}

type AuthorListView struct {
	Title   string
	Authors []models.Author
}

type AuthorDetailView struct {
	Title  string
	Author models.Author
	Books  []models.Book
}

// AuthorFormView carries the date inputs as text so a date that failed to
// parse is shown again as typed.
type AuthorFormView struct {
	Title       string
	Author      models.Author
	DateOfBirth string
	DateOfDeath string
	Errors      validation.Errors
}

// AuthorDeleteView lists the books that block deleting the author.
type AuthorDeleteView struct {
	Title  string
	Author models.Author
	Books  []models.Book
}

type BookListView struct {
	Title string
	Books []models.Book
}

type BookDetailView struct {
	Title     string
	Book      models.Book
	Instances []models.BookInstance
}

// GenreOption is a genre checkbox on the book form.
type GenreOption struct {
	Genre   models.Genre
	Checked bool
}

type BookFormView struct {
	Title   string
	Book    models.Book
	Authors []models.Author
	Genres  []GenreOption
	Errors  validation.Errors
}

type BookDeleteView struct {
	Title     string
	Book      models.Book
	Instances []models.BookInstance
}

type BookInstanceListView struct {
	Title     string
	Instances []models.BookInstance
}

type BookInstanceDetailView struct {
	Title    string
	Instance models.BookInstance
}

type BookInstanceFormView struct {
	Title    string
	Instance models.BookInstance
	DueBack  string
	Books    []models.Book
	Statuses []models.InstanceStatus
	Errors   validation.Errors
}

type BookInstanceDeleteView struct {
	Title    string
	Instance models.BookInstance
}

type GenreListView struct {
	Title  string
	Genres []models.Genre
}

type GenreDetailView struct {
	Title string
	Genre models.Genre
	Books []models.Book
}

type GenreFormView struct {
	Title  string
	Genre  models.Genre
	Errors validation.Errors
}

type GenreDeleteView struct {
	Title string
	Genre models.Genre
	Books []models.Book
}
