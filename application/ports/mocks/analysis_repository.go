// Package mocks provides testify mocks of the application ports for testing.
package mocks

import (
	"context"

	"moodi-backend/application/ports"
	"moodi-backend/domain/core/entities"

	"github.com/stretchr/testify/mock"
)

var _ ports.AnalysisRepository = (*AnalysisRepository)(nil)

// AnalysisRepository is a testify mock of ports.AnalysisRepository
type AnalysisRepository struct {
	mock.Mock
}

func analysis(args mock.Arguments) *entities.ChainAnalysis {
	a, _ := args.Get(0).(*entities.ChainAnalysis)
	return a
}

func analyses(args mock.Arguments) []*entities.ChainAnalysis {
	list, _ := args.Get(0).([]*entities.ChainAnalysis)
	return list
}

// Get mocks ports.AnalysisRepository.Get
func (m *AnalysisRepository) Get(ctx context.Context, id string) (*entities.ChainAnalysis, error) {
	args := m.Called(ctx, id)
	return analysis(args), args.Error(1)
}

// GetAll mocks ports.AnalysisRepository.GetAll
func (m *AnalysisRepository) GetAll(ctx context.Context) ([]*entities.ChainAnalysis, error) {
	args := m.Called(ctx)
	return analyses(args), args.Error(1)
}

// GetByMonth mocks ports.AnalysisRepository.GetByMonth
func (m *AnalysisRepository) GetByMonth(ctx context.Context, year, month int) ([]*entities.ChainAnalysis, error) {
	args := m.Called(ctx, year, month)
	return analyses(args), args.Error(1)
}

// Create mocks ports.AnalysisRepository.Create
func (m *AnalysisRepository) Create(ctx context.Context, input entities.NewChainAnalysis) (*entities.ChainAnalysis, error) {
	args := m.Called(ctx, input)
	return analysis(args), args.Error(1)
}

// Update mocks ports.AnalysisRepository.Update
func (m *AnalysisRepository) Update(ctx context.Context, id string, patch entities.ChainAnalysisPatch) (*entities.ChainAnalysis, error) {
	args := m.Called(ctx, id, patch)
	return analysis(args), args.Error(1)
}

// Delete mocks ports.AnalysisRepository.Delete
func (m *AnalysisRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// Search mocks ports.AnalysisRepository.Search
func (m *AnalysisRepository) Search(ctx context.Context, query string) ([]*entities.ChainAnalysis, error) {
	args := m.Called(ctx, query)
	return analyses(args), args.Error(1)
}
