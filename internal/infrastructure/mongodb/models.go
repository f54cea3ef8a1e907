package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StateDocument holds one client state blob. Namespace separates
// installations sharing a database.
type StateDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Namespace string             `bson:"namespace"`
	Key       string             `bson:"key"`
	Value     []byte             `bson:"value"`
	UpdatedAt time.Time          `bson:"updated_at"`
}
