package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Home statuses
const (
	HomeStatusActive   = "active"
	HomeStatusInactive = "inactive"
	HomeStatusPending  = "pending"
)

// Home holds the structure for the homes collection in mongo and the homes
// sheet in the flat-file mirror. Verified is a pointer so a flat-file row
// that omits the column can be told apart from an explicit false.
type Home struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Location    string             `bson:"location" json:"location"`
	Lat         float64            `bson:"lat" json:"lat"`
	Lng         float64            `bson:"lng" json:"lng"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Contact     string             `bson:"contact,omitempty" json:"contact,omitempty"`
	Verified    *bool              `bson:"verified,omitempty" json:"verified,omitempty"`
	Status      string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt   primitive.DateTime `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   primitive.DateTime `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Key returns the home's natural key, its name.
func (h Home) Key() EntityKey {
	return EntityKey{Kind: KindHome, Value: h.Name}
}

// ValidHomeStatus reports whether s is a member of the home status enum.
func ValidHomeStatus(s string) bool {
	switch s {
	case HomeStatusActive, HomeStatusInactive, HomeStatusPending:
		return true
	}
	return false
}
