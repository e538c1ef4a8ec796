package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Guide() GuideRepository
	Usage() UsageRepository

	Close() error
}
