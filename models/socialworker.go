package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Social worker statuses
const (
	WorkerStatusActive   = "active"
	WorkerStatusInactive = "inactive"
)

// SocialWorker holds the structure for the socialWorkers collection in mongo.
type SocialWorker struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	WorkerID  string             `bson:"workerId" json:"workerId"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt primitive.DateTime `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	LastLogin primitive.DateTime `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	UpdatedAt primitive.DateTime `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Key returns the social worker's natural key, its workerId.
func (s SocialWorker) Key() EntityKey {
	return EntityKey{Kind: KindSocialWorker, Value: s.WorkerID}
}
