package explainer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyResponse means the model returned nothing.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrInvalidJSON means the reply is not a JSON object.
	ErrInvalidJSON = errors.New("model response is not a json object")
	// ErrMissingField means a required key is absent or has the wrong type.
	ErrMissingField = errors.New("model response field missing or mistyped")
)

// parseExplanation decodes a model reply. Replies wrapped in a markdown
// code fence have the first and last lines dropped.
func parseExplanation(text string) (*Explanation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if strings.HasPrefix(text, "```") {
		if lines := strings.Split(text, "\n"); len(lines) > 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	if !gjson.Valid(text) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, ErrInvalidJSON
	}

	title, err := stringKey(doc, "title")
	if err != nil {
		return nil, err
	}
	explanation, err := stringKey(doc, "explanation")
	if err != nil {
		return nil, err
	}
	reasons, err := stringListKey(doc, "reasons")
	if err != nil {
		return nil, err
	}
	nextSteps, err := stringListKey(doc, "next_steps")
	if err != nil {
		return nil, err
	}

	return &Explanation{
		Title:       title,
		Explanation: explanation,
		Reasons:     reasons,
		NextSteps:   nextSteps,
	}, nil
}

func stringKey(doc gjson.Result, key string) (string, error) {
	v := doc.Get(key)
	if v.Type != gjson.String {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return v.String(), nil
}

func stringListKey(doc gjson.Result, key string) ([]string, error) {
	v := doc.Get(key)
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
		out = append(out, item.String())
	}
	return out, nil
}
