package models

import (
	"time"
)

type Author struct {
	Base        `bson:",inline"`
	FirstName   string     `bson:"first_name" json:"first_name"`
	FamilyName  string     `bson:"family_name" json:"family_name"`
	DateOfBirth *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `bson:"date_of_death,omitempty" json:"date_of_death,omitempty"`
}

const (
	AuthorEntity = "author"
)

// Name is "family_name, first_name", or empty when either part is missing.
func (a Author) Name() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

func (a Author) URL() string {
	return "/catalog/author/" + a.ID.Hex()
}

func (a Author) DateOfBirthFormatted() string {
	return FormatLong(deref(a.DateOfBirth))
}

func (a Author) DateOfDeathFormatted() string {
	return FormatLong(deref(a.DateOfDeath))
}

func (a Author) DateOfBirthInput() string {
	return FormatISO(deref(a.DateOfBirth))
}

func (a Author) DateOfDeathInput() string {
	return FormatISO(deref(a.DateOfDeath))
}

// Lifespan renders "born - died" with either side possibly blank.
func (a Author) Lifespan() string {
	birth, death := a.DateOfBirthFormatted(), a.DateOfDeathFormatted()
	if birth == "" && death == "" {
		return ""
	}
	return birth + " - " + death
}
