package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/agent-trainer/internal/domain/entities"
	"github.com/johnquangdev/agent-trainer/internal/domain/repositories"
)

// VoiceAnalysisRepository handles voice analysis data operations
type VoiceAnalysisRepository struct {
	db *gorm.DB
}

var _ repositories.VoiceAnalysisRepository = (*VoiceAnalysisRepository)(nil)

// NewVoiceAnalysisRepository creates a new voice analysis repository
func NewVoiceAnalysisRepository(db *gorm.DB) *VoiceAnalysisRepository {
	return &VoiceAnalysisRepository{db: db}
}

// Create stores a new voice analysis
func (r *VoiceAnalysisRepository) Create(ctx context.Context, analysis *entities.VoiceAnalysis) error {
	if analysis == nil {
		return errors.New("analysis cannot be nil")
	}
	return r.db.WithContext(ctx).Create(analysis).Error
}

// FindByID retrieves a voice analysis by ID, returning nil when absent
func (r *VoiceAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.VoiceAnalysis, error) {
	var analysis entities.VoiceAnalysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// FindBySimulationID lists the analyses of a simulation, newest first
func (r *VoiceAnalysisRepository) FindBySimulationID(ctx context.Context, simulationID uuid.UUID) ([]*entities.VoiceAnalysis, error) {
	var analyses []*entities.VoiceAnalysis
	if err := r.db.WithContext(ctx).
		Where("simulation_id = ?", simulationID).
		Order("created_at DESC").
		Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

// Delete removes a voice analysis
func (r *VoiceAnalysisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.VoiceAnalysis{}).Error
}
