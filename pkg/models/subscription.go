package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription records Subscriber following Channel. Toggle semantics,
// same as Like.
type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
