package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Admin holds the structure for the admins collection in mongo. Passwords are
// stored as bcrypt hashes and never serialized in API responses.
type Admin struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	UpdatedAt primitive.DateTime `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Key returns the admin's natural key, its username.
func (a Admin) Key() EntityKey {
	return EntityKey{Kind: KindAdmin, Value: a.Username}
}
