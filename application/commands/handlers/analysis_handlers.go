package handlers

import (
	"context"
	"fmt"

	"moodi-backend/application/commands"
	"moodi-backend/application/commands/bus"
	"moodi-backend/application/ports"
	appErrors "moodi-backend/pkg/errors"

	"go.uber.org/zap"
)

const analysisResource = "Analysis"

// CreateAnalysisHandler handles analysis creation commands
type CreateAnalysisHandler struct {
	repo   ports.AnalysisRepository
	logger *zap.Logger
}

// NewCreateAnalysisHandler creates a new create analysis handler
func NewCreateAnalysisHandler(repo ports.AnalysisRepository, logger *zap.Logger) *CreateAnalysisHandler {
	return &CreateAnalysisHandler{repo: repo, logger: logger}
}

// Handle executes the create analysis command
func (h *CreateAnalysisHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.CreateAnalysisCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}

	analysis, err := h.repo.Create(ctx, c.Input())
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to create analysis")
	}

	h.logger.Info("Analysis created", zap.String("analysisID", analysis.ID))
	return analysis, nil
}

// UpdateAnalysisHandler handles analysis update commands
type UpdateAnalysisHandler struct {
	repo   ports.AnalysisRepository
	logger *zap.Logger
}

// NewUpdateAnalysisHandler creates a new update analysis handler
func NewUpdateAnalysisHandler(repo ports.AnalysisRepository, logger *zap.Logger) *UpdateAnalysisHandler {
	return &UpdateAnalysisHandler{repo: repo, logger: logger}
}

// Handle executes the update analysis command
func (h *UpdateAnalysisHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.UpdateAnalysisCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}

	analysis, err := h.repo.Update(ctx, c.ID, c.Patch())
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to update analysis")
	}
	if analysis == nil {
		return nil, appErrors.NewNotFoundError(analysisResource)
	}

	h.logger.Info("Analysis updated", zap.String("analysisID", analysis.ID))
	return analysis, nil
}

// DeleteAnalysisHandler handles analysis deletion commands
type DeleteAnalysisHandler struct {
	repo   ports.AnalysisRepository
	logger *zap.Logger
}

// NewDeleteAnalysisHandler creates a new delete analysis handler
func NewDeleteAnalysisHandler(repo ports.AnalysisRepository, logger *zap.Logger) *DeleteAnalysisHandler {
	return &DeleteAnalysisHandler{repo: repo, logger: logger}
}

// Handle executes the delete analysis command
func (h *DeleteAnalysisHandler) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.DeleteAnalysisCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}

	removed, err := h.repo.Delete(ctx, c.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to delete analysis")
	}
	if !removed {
		return nil, appErrors.NewNotFoundError(analysisResource)
	}

	h.logger.Info("Analysis deleted", zap.String("analysisID", c.ID))
	return nil, nil
}

// RegisterAnalysisHandlers wires every analysis command into b
func RegisterAnalysisHandlers(b *bus.CommandBus, repo ports.AnalysisRepository, logger *zap.Logger) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateAnalysisCommand{}, NewCreateAnalysisHandler(repo, logger)},
		{commands.UpdateAnalysisCommand{}, NewUpdateAnalysisHandler(repo, logger)},
		{commands.DeleteAnalysisCommand{}, NewDeleteAnalysisHandler(repo, logger)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}
