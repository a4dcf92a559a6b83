package handlers

import "go.mongodb.org/mongo-driver/bson/primitive"

// trimWatchHistory prepends latest to history, dropping any earlier
// occurrence of it, and caps the result at limit entries (newest first).
func trimWatchHistory(history []primitive.ObjectID, latest primitive.ObjectID, limit int) []primitive.ObjectID {
	trimmed := make([]primitive.ObjectID, 0, len(history)+1)
	trimmed = append(trimmed, latest)
	for _, id := range history {
		if len(trimmed) >= limit {
			break
		}
		if id == latest {
			continue
		}
		trimmed = append(trimmed, id)
	}
	return trimmed
}
