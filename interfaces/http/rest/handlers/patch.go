package handlers

import (
	"encoding/json"
	"fmt"

	"moodi-backend/application/commands"
	"moodi-backend/domain/core/valueobjects"
	appErrors "moodi-backend/pkg/errors"
	"moodi-backend/pkg/utils"
)

// decodeUpdate turns a PATCH body into an update command. Absent keys leave
// fields alone. Explicit null clears the nullable fields, empties the list
// fields and is rejected for required ones. id, createdAt and unknown keys are
// dropped.
func decodeUpdate(id string, body []byte) (commands.UpdateAnalysisCommand, error) {
	cmd := commands.UpdateAnalysisCommand{ID: id}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return cmd, appErrors.NewValidationError("Invalid request body: expected a JSON object")
	}

	var errs []error
	fail := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	requiredString := func(key string, dst **string) {
		raw, ok := fields[key]
		if !ok {
			return
		}
		if isNull(raw) {
			fail(utils.FieldError(key, fmt.Sprintf("%s cannot be null", key)))
			return
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			fail(typeError(key, "a string"))
			return
		}
		*dst = &v
	}

	nullableString := func(key string, dst *valueobjects.Nullable[string]) {
		raw, ok := fields[key]
		if !ok {
			return
		}
		if isNull(raw) {
			*dst = valueobjects.SetNull[string]()
			return
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			fail(typeError(key, "a string or null"))
			return
		}
		*dst = valueobjects.SetTo(v)
	}

	stringList := func(key string, dst **[]string) {
		raw, ok := fields[key]
		if !ok {
			return
		}
		v := []string{}
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &v); err != nil {
				fail(typeError(key, "a list of strings"))
				return
			}
		}
		*dst = &v
	}

	requiredString("title", &cmd.Title)
	requiredString("eventDate", &cmd.EventDate)
	requiredString("precipitatingEvent", &cmd.PrecipitatingEvent)
	requiredString("primaryEmotion", &cmd.PrimaryEmotion)
	nullableString("eventTime", &cmd.EventTime)
	nullableString("notes", &cmd.Notes)
	stringList("vulnerabilities", &cmd.Vulnerabilities)
	stringList("interventions", &cmd.Interventions)

	if raw, ok := fields["emotionalIntensity"]; ok {
		var v int
		switch {
		case isNull(raw):
			fail(utils.FieldError("emotionalIntensity", "emotionalIntensity cannot be null"))
		case json.Unmarshal(raw, &v) != nil:
			fail(typeError("emotionalIntensity", "an integer"))
		default:
			cmd.EmotionalIntensity = &v
		}
	}

	if raw, ok := fields["wellnessScore"]; ok {
		var v int
		switch {
		case isNull(raw):
			cmd.WellnessScore = valueobjects.SetNull[int]()
		case json.Unmarshal(raw, &v) != nil:
			fail(typeError("wellnessScore", "an integer or null"))
		default:
			cmd.WellnessScore = valueobjects.SetTo(v)
		}
	}

	if raw, ok := fields["chainLinks"]; ok {
		links := []commands.ChainLinkInput{}
		if !isNull(raw) {
			if err := json.Unmarshal(raw, &links); err != nil {
				fail(typeError("chainLinks", "a list of chain links"))
			}
		}
		cmd.ChainLinks = &links
	}

	if err := utils.MergeValidation(errs...); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func typeError(field, want string) error {
	return utils.FieldError(field, fmt.Sprintf("%s must be %s", field, want))
}
