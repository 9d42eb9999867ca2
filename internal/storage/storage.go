package storage

import "activityScope/internal/model"

// Storage defines a sink for normalized activity records.
type Storage interface {
	PutActivityBatch(events []model.ActivityEvent) error
}
