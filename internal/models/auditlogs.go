package models

import (
	"time"
)

type AuditLog struct {
	Base        `bson:",inline"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Entity      string    `bson:"entity" json:"entity"`
	Action      string    `bson:"action" json:"action"`
	PerformedBy string    `bson:"performed_by" json:"performed_by"` // request id or "system"
	Data        any       `bson:"data" json:"data"`                 // raw payload
	Exported    bool      `bson:"exported" json:"exported"`
}
