package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InstanceStatus string

const (
	StatusAvailable   InstanceStatus = "Available"
	StatusMaintenance InstanceStatus = "Maintenance"
	StatusLoaned      InstanceStatus = "Loaned"
	StatusReserved    InstanceStatus = "Reserved"

	BookInstanceEntity = "bookinstance"
)

// InstanceStatuses lists the statuses in the order the forms offer them.
var InstanceStatuses = []InstanceStatus{
	StatusMaintenance,
	StatusAvailable,
	StatusLoaned,
	StatusReserved,
}

var ValidInstanceStatuses = map[string]bool{
	string(StatusAvailable):   true,
	string(StatusMaintenance): true,
	string(StatusLoaned):      true,
	string(StatusReserved):    true,
}

func IsValidInstanceStatus(status string) bool {
	return ValidInstanceStatuses[status]
}

type BookInstance struct {
	Base    `bson:",inline"`
	BookID  primitive.ObjectID `bson:"book" json:"book_id"`
	Imprint string             `bson:"imprint" json:"imprint"`
	Status  InstanceStatus     `bson:"status" json:"status"`
	DueBack time.Time          `bson:"due_back" json:"due_back"`

	Book *Book `bson:"-" json:"book,omitempty"`
}

// NewBookInstance applies the defaults: status Maintenance, due back now.
func NewBookInstance(book primitive.ObjectID, imprint string, now time.Time) BookInstance {
	return BookInstance{
		BookID:  book,
		Imprint: imprint,
		Status:  StatusMaintenance,
		DueBack: now,
	}
}

func (bi BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID.Hex()
}

func (bi BookInstance) DueBackFormatted() string {
	return FormatLong(bi.DueBack)
}

func (bi BookInstance) DueBackInput() string {
	return FormatISO(bi.DueBack)
}
