package memory

import (
	"github.com/garage-lab/gearbox/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository used for development and tests. State
// lives for the process lifetime only.
type Memory struct {
	guide *guideRepository
	usage *usageRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		guide: newGuideRepository(),
		usage: newUsageRepository(),
	}
}

func (m *Memory) Guide() interfaces.GuideRepository {
	return m.guide
}

func (m *Memory) Usage() interfaces.UsageRepository {
	return m.usage
}

func (m *Memory) Close() error {
	return nil
}
