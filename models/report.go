package models

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report statuses
const (
	ReportStatusPending  = "pending"
	ReportStatusResolved = "resolved"
)

// Report represents a case submitted by a social worker. The numeric ID is
// assigned at creation from the creation time and is the natural key across
// both stores; the mongo _id is internal only.
type Report struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          int64              `bson:"id" json:"id"`
	WorkerID    string             `bson:"workerId" json:"workerId"`
	PersonName  string             `bson:"personName" json:"personName"`
	Age         int                `bson:"age" json:"age"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Timestamp   primitive.DateTime `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	UpdatedAt   primitive.DateTime `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Key returns the report's natural key, its numeric id.
func (r Report) Key() EntityKey {
	return EntityKey{Kind: KindReport, Value: strconv.FormatInt(r.ID, 10)}
}
