package config

import "time"

// NewQuotaForTest creates a Quota config for testing purposes
func NewQuotaForTest(freeLimit, maxAttempts int, retryDelay time.Duration) *Quota {
	return &Quota{
		freeLimit:   freeLimit,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

// NewImagenForTest creates an Imagen config for testing purposes
func NewImagenForTest(projectID, location, bucket string) *Imagen {
	return &Imagen{
		projectID: projectID,
		location:  location,
		bucket:    bucket,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{
		backend:    backend,
		projectID:  projectID,
		databaseID: databaseID,
	}
}
