package commands

import (
	"moodi-backend/domain/core/entities"
	"moodi-backend/domain/core/valueobjects"
	appErrors "moodi-backend/pkg/errors"
	"moodi-backend/pkg/utils"
)

// ChainLinkInput is one chain link as supplied by a client
type ChainLinkInput struct {
	ID      string `json:"id"`
	Type    string `json:"type" validate:"required,oneof=thought emotion behavior physical"`
	Content string `json:"content"`
	Order   int    `json:"order" validate:"gte=0"`
}

func toChainLinks(in []ChainLinkInput) []entities.ChainLink {
	out := make([]entities.ChainLink, len(in))
	for i, l := range in {
		out[i] = entities.ChainLink{
			ID:      l.ID,
			Type:    valueobjects.LinkType(l.Type),
			Content: l.Content,
			Order:   l.Order,
		}
	}
	return out
}

// CreateAnalysisCommand records a new chain analysis. Identity and creation
// time are assigned by the store; a client cannot supply them.
type CreateAnalysisCommand struct {
	Title              string           `json:"title" validate:"required"`
	EventDate          string           `json:"eventDate" validate:"required"`
	EventTime          *string          `json:"eventTime"`
	PrecipitatingEvent string           `json:"precipitatingEvent" validate:"required"`
	PrimaryEmotion     string           `json:"primaryEmotion" validate:"required"`
	EmotionalIntensity *int             `json:"emotionalIntensity" validate:"required,min=1,max=10"`
	ChainLinks         []ChainLinkInput `json:"chainLinks" validate:"dive"`
	Vulnerabilities    []string         `json:"vulnerabilities"`
	Interventions      []string         `json:"interventions"`
	WellnessScore      *int             `json:"wellnessScore" validate:"omitempty,min=1,max=10"`
	Notes              *string          `json:"notes"`
}

// Validate validates the CreateAnalysisCommand
func (c CreateAnalysisCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Input converts the command into the store's create input
func (c CreateAnalysisCommand) Input() entities.NewChainAnalysis {
	in := entities.NewChainAnalysis{
		Title:              c.Title,
		EventDate:          c.EventDate,
		EventTime:          c.EventTime,
		PrecipitatingEvent: c.PrecipitatingEvent,
		PrimaryEmotion:     c.PrimaryEmotion,
		ChainLinks:         toChainLinks(c.ChainLinks),
		Vulnerabilities:    c.Vulnerabilities,
		Interventions:      c.Interventions,
		WellnessScore:      c.WellnessScore,
		Notes:              c.Notes,
	}
	if c.EmotionalIntensity != nil {
		in.EmotionalIntensity = *c.EmotionalIntensity
	}
	return in
}

// UpdateAnalysisCommand partially updates a chain analysis. Nil pointers and
// unset nullables leave fields untouched.
type UpdateAnalysisCommand struct {
	ID                 string                        `json:"-" validate:"required"`
	Title              *string                       `json:"title" validate:"omitempty,min=1"`
	EventDate          *string                       `json:"eventDate" validate:"omitempty,min=1"`
	EventTime          valueobjects.Nullable[string] `json:"-"`
	PrecipitatingEvent *string                       `json:"precipitatingEvent" validate:"omitempty,min=1"`
	PrimaryEmotion     *string                       `json:"primaryEmotion" validate:"omitempty,min=1"`
	EmotionalIntensity *int                          `json:"emotionalIntensity" validate:"omitempty,min=1,max=10"`
	ChainLinks         *[]ChainLinkInput             `json:"chainLinks" validate:"omitempty,dive"`
	Vulnerabilities    *[]string                     `json:"vulnerabilities"`
	Interventions      *[]string                     `json:"interventions"`
	WellnessScore      valueobjects.Nullable[int]    `json:"-"`
	Notes              valueobjects.Nullable[string] `json:"-"`
}

// Validate validates the UpdateAnalysisCommand
func (c UpdateAnalysisCommand) Validate() error {
	errs := []error{utils.ValidateStruct(c)}
	if c.WellnessScore.Set && c.WellnessScore.Value != nil {
		errs = append(errs, utils.ValidateVar("wellnessScore", *c.WellnessScore.Value, "min=1,max=10"))
	}
	return utils.MergeValidation(errs...)
}

// Patch converts the command into the store's patch
func (c UpdateAnalysisCommand) Patch() entities.ChainAnalysisPatch {
	p := entities.ChainAnalysisPatch{
		Title:              c.Title,
		EventDate:          c.EventDate,
		EventTime:          c.EventTime,
		PrecipitatingEvent: c.PrecipitatingEvent,
		PrimaryEmotion:     c.PrimaryEmotion,
		EmotionalIntensity: c.EmotionalIntensity,
		Vulnerabilities:    c.Vulnerabilities,
		Interventions:      c.Interventions,
		WellnessScore:      c.WellnessScore,
		Notes:              c.Notes,
	}
	if c.ChainLinks != nil {
		links := toChainLinks(*c.ChainLinks)
		p.ChainLinks = &links
	}
	return p
}

// DeleteAnalysisCommand removes a chain analysis
type DeleteAnalysisCommand struct {
	ID string
}

// Validate validates the DeleteAnalysisCommand
func (c DeleteAnalysisCommand) Validate() error {
	if c.ID == "" {
		return appErrors.NewValidationError("analysis ID is required")
	}
	return nil
}
