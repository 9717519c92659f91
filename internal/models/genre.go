package models

type Genre struct {
	Base `bson:",inline"`
	Name string `bson:"name" json:"name"`
}

const (
	GenreEntity = "genre"

	GenreNameMin = 3
	GenreNameMax = 100
)

func (g Genre) URL() string {
	return "/catalog/genre/" + g.ID.Hex()
}
