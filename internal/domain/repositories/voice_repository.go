package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
)

// VoiceAnalysisRepository defines the interface for voice analysis data operations
type VoiceAnalysisRepository interface {
	// Create stores a new voice analysis
	Create(ctx context.Context, analysis *entities.VoiceAnalysis) error

	// FindByID finds a voice analysis by ID, returning nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, error)

	// FindBySimulationID lists the analyses of a simulation, newest first
	FindBySimulationID(ctx context.Context, simulationID uuid.UUID) ([]*entities.VoiceAnalysis, error)

	// Delete removes a voice analysis
	Delete(ctx context.Context, id uuid.UUID) error
}
