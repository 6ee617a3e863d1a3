package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"moodi-backend/application/commands"
	"moodi-backend/application/commands/bus"
	"moodi-backend/application/ports/mocks"
	"moodi-backend/domain/core/entities"
	appErrors "moodi-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBus(t *testing.T, repo *mocks.AnalysisRepository) *bus.CommandBus {
	t.Helper()
	b := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, RegisterAnalysisHandlers(b, repo, zap.NewNop()))
	return b
}

func intPtr(v int) *int { return &v }

func TestCreateAnalysisHandler(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := &mocks.AnalysisRepository{}
	stored := &entities.ChainAnalysis{ID: "new-id", Title: "Nuevo", CreatedAt: time.Now()}
	repo.On("Create", ctx, mock.MatchedBy(func(in entities.NewChainAnalysis) bool {
		return in.Title == "Nuevo" && in.EmotionalIntensity == 4
	})).Return(stored, nil)
	b := newBus(t, repo)

	// Act
	result, err := b.Send(ctx, commands.CreateAnalysisCommand{
		Title:              "Nuevo",
		EventDate:          "2024-05-01",
		PrecipitatingEvent: "Algo",
		PrimaryEmotion:     "miedo",
		EmotionalIntensity: intPtr(4),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stored, result)
	repo.AssertExpectations(t)
}

func TestCreateAnalysisHandler_InvalidCommandNeverReachesStore(t *testing.T) {
	repo := &mocks.AnalysisRepository{}
	b := newBus(t, repo)

	_, err := b.Send(context.Background(), commands.CreateAnalysisCommand{Title: "solo título"})

	assert.True(t, appErrors.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAnalysisHandler_StoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.AnalysisRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil, errors.New("disk full"))
	b := newBus(t, repo)

	_, err := b.Send(ctx, commands.CreateAnalysisCommand{
		Title: "t", EventDate: "d", PrecipitatingEvent: "p", PrimaryEmotion: "e", EmotionalIntensity: intPtr(1),
	})

	require.Error(t, err)
	assert.True(t, appErrors.IsType(err, appErrors.ErrorTypeInternal))
}

func TestUpdateAnalysisHandler(t *testing.T) {
	ctx := context.Background()
	title := "Editado"

	t.Run("found", func(t *testing.T) {
		repo := &mocks.AnalysisRepository{}
		updated := &entities.ChainAnalysis{ID: "abc", Title: title}
		repo.On("Update", ctx, "abc", mock.MatchedBy(func(p entities.ChainAnalysisPatch) bool {
			return p.Title != nil && *p.Title == title
		})).Return(updated, nil)
		b := newBus(t, repo)

		result, err := b.Send(ctx, commands.UpdateAnalysisCommand{ID: "abc", Title: &title})

		require.NoError(t, err)
		assert.Equal(t, updated, result)
	})

	t.Run("absent", func(t *testing.T) {
		repo := &mocks.AnalysisRepository{}
		repo.On("Update", ctx, "missing", mock.Anything).Return(nil, nil)
		b := newBus(t, repo)

		_, err := b.Send(ctx, commands.UpdateAnalysisCommand{ID: "missing", Title: &title})

		assert.True(t, appErrors.IsNotFound(err))
		assert.Equal(t, "Analysis not found", appErrors.GetAppError(err).Message)
	})
}

func TestDeleteAnalysisHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("removed", func(t *testing.T) {
		repo := &mocks.AnalysisRepository{}
		repo.On("Delete", ctx, "abc").Return(true, nil)
		b := newBus(t, repo)

		_, err := b.Send(ctx, commands.DeleteAnalysisCommand{ID: "abc"})

		assert.NoError(t, err)
		repo.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("absent", func(t *testing.T) {
		repo := &mocks.AnalysisRepository{}
		repo.On("Delete", ctx, "missing").Return(false, nil)
		b := newBus(t, repo)

		_, err := b.Send(ctx, commands.DeleteAnalysisCommand{ID: "missing"})

		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("unavailable store keeps its type", func(t *testing.T) {
		repo := &mocks.AnalysisRepository{}
		repo.On("Delete", ctx, "abc").Return(false, appErrors.NewUnavailableError("analysis store"))
		b := newBus(t, repo)

		_, err := b.Send(ctx, commands.DeleteAnalysisCommand{ID: "abc"})

		assert.True(t, appErrors.IsUnavailable(err))
	})
}
