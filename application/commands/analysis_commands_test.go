package commands

import (
	"testing"

	"moodi-backend/domain/core/valueobjects"
	appErrors "moodi-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validCreate() CreateAnalysisCommand {
	return CreateAnalysisCommand{
		Title:              "Discusión en el trabajo",
		EventDate:          "2024-05-09",
		PrecipitatingEvent: "Reunión",
		PrimaryEmotion:     "ira",
		EmotionalIntensity: intPtr(7),
		ChainLinks: []ChainLinkInput{
			{ID: "1", Type: "thought", Content: "No me respetan", Order: 0},
		},
	}
}

func TestCreateAnalysisCommand_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateAnalysisCommand)
		wantField string
	}{
		{name: "valid", mutate: func(*CreateAnalysisCommand) {}},
		{name: "missing title", mutate: func(c *CreateAnalysisCommand) { c.Title = "" }, wantField: "title"},
		{name: "missing event date", mutate: func(c *CreateAnalysisCommand) { c.EventDate = "" }, wantField: "eventDate"},
		{name: "missing intensity", mutate: func(c *CreateAnalysisCommand) { c.EmotionalIntensity = nil }, wantField: "emotionalIntensity"},
		{name: "intensity too high", mutate: func(c *CreateAnalysisCommand) { c.EmotionalIntensity = intPtr(11) }, wantField: "emotionalIntensity"},
		{name: "intensity too low", mutate: func(c *CreateAnalysisCommand) { c.EmotionalIntensity = intPtr(0) }, wantField: "emotionalIntensity"},
		{name: "wellness out of range", mutate: func(c *CreateAnalysisCommand) { c.WellnessScore = intPtr(12) }, wantField: "wellnessScore"},
		{name: "unknown link type", mutate: func(c *CreateAnalysisCommand) { c.ChainLinks[0].Type = "smell" }, wantField: "chainLinks[0].type"},
		{name: "negative link order", mutate: func(c *CreateAnalysisCommand) { c.ChainLinks[0].Order = -1 }, wantField: "chainLinks[0].order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCreate()
			tt.mutate(&cmd)

			err := cmd.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErrors.IsValidation(err))
			assert.Contains(t, appErrors.GetAppError(err).Details, tt.wantField)
		})
	}
}

func TestCreateAnalysisCommand_Input(t *testing.T) {
	cmd := validCreate()
	cmd.WellnessScore = intPtr(6)

	in := cmd.Input()

	assert.Equal(t, "Discusión en el trabajo", in.Title)
	assert.Equal(t, 7, in.EmotionalIntensity)
	require.Len(t, in.ChainLinks, 1)
	assert.Equal(t, valueobjects.LinkTypeThought, in.ChainLinks[0].Type)
	assert.Equal(t, 6, *in.WellnessScore)
}

func TestUpdateAnalysisCommand_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cmd       UpdateAnalysisCommand
		wantField string
	}{
		{name: "empty patch", cmd: UpdateAnalysisCommand{ID: "a"}},
		{name: "missing id", cmd: UpdateAnalysisCommand{}, wantField: "ID"},
		{name: "empty title", cmd: UpdateAnalysisCommand{ID: "a", Title: strPtr("")}, wantField: "title"},
		{name: "intensity range", cmd: UpdateAnalysisCommand{ID: "a", EmotionalIntensity: intPtr(11)}, wantField: "emotionalIntensity"},
		{name: "wellness cleared", cmd: UpdateAnalysisCommand{ID: "a", WellnessScore: valueobjects.SetNull[int]()}},
		{name: "wellness range", cmd: UpdateAnalysisCommand{ID: "a", WellnessScore: valueobjects.SetTo(0)}, wantField: "wellnessScore"},
		{
			name:      "bad link",
			cmd:       UpdateAnalysisCommand{ID: "a", ChainLinks: &[]ChainLinkInput{{Type: "nope"}}},
			wantField: "chainLinks[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErrors.IsValidation(err))
			assert.Contains(t, appErrors.GetAppError(err).Details, tt.wantField)
		})
	}
}

func TestUpdateAnalysisCommand_Patch(t *testing.T) {
	cmd := UpdateAnalysisCommand{
		ID:         "a",
		Title:      strPtr("Nuevo"),
		ChainLinks: &[]ChainLinkInput{{ID: "x", Type: "emotion", Content: "rabia", Order: 2}},
		Notes:      valueobjects.SetNull[string](),
	}

	p := cmd.Patch()

	assert.Equal(t, "Nuevo", *p.Title)
	require.NotNil(t, p.ChainLinks)
	assert.Equal(t, valueobjects.LinkTypeEmotion, (*p.ChainLinks)[0].Type)
	assert.True(t, p.Notes.Set)
	assert.Nil(t, p.Notes.Value)
	assert.Nil(t, p.EventDate)
	assert.False(t, p.WellnessScore.Set)
}

func TestDeleteAnalysisCommand_Validate(t *testing.T) {
	assert.NoError(t, DeleteAnalysisCommand{ID: "a"}.Validate())
	assert.True(t, appErrors.IsValidation(DeleteAnalysisCommand{}.Validate()))
}
