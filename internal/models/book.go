package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	Base     `bson:",inline"`
	Title    string               `json:"title" bson:"title"`
	AuthorID primitive.ObjectID   `json:"author_id" bson:"author"`
	Summary  string               `json:"summary" bson:"summary"`
	ISBN     string               `json:"isbn" bson:"isbn"`
	GenreIDs []primitive.ObjectID `json:"genre_ids" bson:"genre"`

	// Resolved references; never persisted.
	Author *Author `json:"author,omitempty" bson:"-"`
	Genres []Genre `json:"genres,omitempty" bson:"-"`
}

const (
	BookEntity = "book"
)

func (b Book) URL() string {
	return "/catalog/book/" + b.ID.Hex()
}

func (b Book) HasGenre(id primitive.ObjectID) bool {
	for _, g := range b.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}
