package entities

import (
	"strings"
	"time"

	"moodi-backend/domain/core/valueobjects"
)

// ChainLink is one step of the response chain recorded in an analysis
type ChainLink struct {
	ID      string                `json:"id"`
	Type    valueobjects.LinkType `json:"type"`
	Content string                `json:"content"`
	Order   int                   `json:"order"`
}

// ChainAnalysis is a single journal record: a triggering event, the emotional
// response to it and the reflection written afterwards.
//
// ID and CreatedAt are assigned by the store on creation and are never changed
// by an update.
type ChainAnalysis struct {
	ID                 string      `json:"id"`
	Title              string      `json:"title"`
	EventDate          string      `json:"eventDate"`
	EventTime          *string     `json:"eventTime"`
	PrecipitatingEvent string      `json:"precipitatingEvent"`
	PrimaryEmotion     string      `json:"primaryEmotion"`
	EmotionalIntensity int         `json:"emotionalIntensity"`
	ChainLinks         []ChainLink `json:"chainLinks"`
	Vulnerabilities    []string    `json:"vulnerabilities"`
	Interventions      []string    `json:"interventions"`
	WellnessScore      *int        `json:"wellnessScore"`
	Notes              *string     `json:"notes"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// NewChainAnalysis is the caller-supplied part of a record. Everything except
// the identity and the creation timestamp.
type NewChainAnalysis struct {
	Title              string
	EventDate          string
	EventTime          *string
	PrecipitatingEvent string
	PrimaryEmotion     string
	EmotionalIntensity int
	ChainLinks         []ChainLink
	Vulnerabilities    []string
	Interventions      []string
	WellnessScore      *int
	Notes              *string
}

// NewChainAnalysisRecord synthesises a full record from caller input.
// Missing sequences become empty ones and an empty event time becomes null.
func NewChainAnalysisRecord(id valueobjects.AnalysisID, in NewChainAnalysis, createdAt time.Time) *ChainAnalysis {
	a := &ChainAnalysis{
		ID:                 id.String(),
		Title:              in.Title,
		EventDate:          in.EventDate,
		PrecipitatingEvent: in.PrecipitatingEvent,
		PrimaryEmotion:     in.PrimaryEmotion,
		EmotionalIntensity: in.EmotionalIntensity,
		ChainLinks:         cloneLinks(in.ChainLinks),
		Vulnerabilities:    cloneStrings(in.Vulnerabilities),
		Interventions:      cloneStrings(in.Interventions),
		WellnessScore:      clonePtr(in.WellnessScore),
		Notes:              clonePtr(in.Notes),
		CreatedAt:          createdAt,
	}
	if in.EventTime != nil && *in.EventTime != "" {
		a.EventTime = clonePtr(in.EventTime)
	}
	return a
}

// ChainAnalysisPatch is a shallow partial update. A nil pointer leaves the
// field alone. ID and CreatedAt have no field here.
type ChainAnalysisPatch struct {
	Title              *string
	EventDate          *string
	EventTime          valueobjects.Nullable[string]
	PrecipitatingEvent *string
	PrimaryEmotion     *string
	EmotionalIntensity *int
	ChainLinks         *[]ChainLink
	Vulnerabilities    *[]string
	Interventions      *[]string
	WellnessScore      valueobjects.Nullable[int]
	Notes              valueobjects.Nullable[string]
}

// IsEmpty reports whether the patch changes nothing
func (p ChainAnalysisPatch) IsEmpty() bool {
	return p.Title == nil && p.EventDate == nil && !p.EventTime.Set &&
		p.PrecipitatingEvent == nil && p.PrimaryEmotion == nil &&
		p.EmotionalIntensity == nil && p.ChainLinks == nil &&
		p.Vulnerabilities == nil && p.Interventions == nil &&
		!p.WellnessScore.Set && !p.Notes.Set
}

// Apply merges the patch into a, field by field
func (a *ChainAnalysis) Apply(p ChainAnalysisPatch) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.EventDate != nil {
		a.EventDate = *p.EventDate
	}
	a.EventTime = p.EventTime.Apply(a.EventTime)
	if p.PrecipitatingEvent != nil {
		a.PrecipitatingEvent = *p.PrecipitatingEvent
	}
	if p.PrimaryEmotion != nil {
		a.PrimaryEmotion = *p.PrimaryEmotion
	}
	if p.EmotionalIntensity != nil {
		a.EmotionalIntensity = *p.EmotionalIntensity
	}
	if p.ChainLinks != nil {
		a.ChainLinks = cloneLinks(*p.ChainLinks)
	}
	if p.Vulnerabilities != nil {
		a.Vulnerabilities = cloneStrings(*p.Vulnerabilities)
	}
	if p.Interventions != nil {
		a.Interventions = cloneStrings(*p.Interventions)
	}
	a.WellnessScore = p.WellnessScore.Apply(a.WellnessScore)
	a.Notes = p.Notes.Apply(a.Notes)
}

// Clone returns a deep copy of a
func (a *ChainAnalysis) Clone() *ChainAnalysis {
	if a == nil {
		return nil
	}
	c := *a
	c.EventTime = clonePtr(a.EventTime)
	c.ChainLinks = cloneLinks(a.ChainLinks)
	c.Vulnerabilities = cloneStrings(a.Vulnerabilities)
	c.Interventions = cloneStrings(a.Interventions)
	c.WellnessScore = clonePtr(a.WellnessScore)
	c.Notes = clonePtr(a.Notes)
	return &c
}

// Matches reports whether query occurs, ignoring case, in the title, the
// precipitating event, the primary emotion or the notes.
func (a *ChainAnalysis) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.PrecipitatingEvent), q) ||
		strings.Contains(strings.ToLower(a.PrimaryEmotion), q) {
		return true
	}
	return a.Notes != nil && strings.Contains(strings.ToLower(*a.Notes), q)
}

// CreatedIn reports whether the record was created in the given calendar
// month as seen from loc. Months outside 1..12 never match.
func (a *ChainAnalysis) CreatedIn(year, month int, loc *time.Location) bool {
	t := a.CreatedAt.In(loc)
	return t.Year() == year && int(t.Month()) == month
}

// MonthWindow returns the half-open interval [start, end) covering the given
// calendar month in loc. ok is false for a month outside 1..12.
func MonthWindow(year, month int, loc *time.Location) (start, end time.Time, ok bool) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, false
	}
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), true
}

func cloneLinks(in []ChainLink) []ChainLink {
	out := make([]ChainLink, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
