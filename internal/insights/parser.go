package insights

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnparsable covers every way a model response can fail to become a
// narrative: bad JSON, wrong shape, missing pieces. Callers only branch
// on "usable or not", so one error kind is enough.
var ErrUnparsable = errors.New("insights: model response is not a usable narrative")

// Narrative is the model's analysis of a user's finances.
type Narrative struct {
	Summary         string   `json:"summary"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// parseNarrative extracts a Narrative from raw model output. The model is
// told to return bare JSON but routinely wraps it in Markdown fences or
// nests the object under a "data" key; both are tolerated and normalized.
func parseNarrative(raw string) (Narrative, error) {
	clean := cleanModelJSON(raw)

	var envelope struct {
		Narrative
		Data *Narrative `json:"data"`
	}
	if err := json.Unmarshal([]byte(clean), &envelope); err != nil {
		return Narrative{}, ErrUnparsable
	}

	n := envelope.Narrative
	if envelope.Data != nil {
		n = *envelope.Data
	}

	if strings.TrimSpace(n.Summary) == "" {
		return Narrative{}, ErrUnparsable
	}
	if len(n.Insights) != 3 || len(n.Recommendations) != 3 {
		return Narrative{}, ErrUnparsable
	}
	return n, nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers. The closing fence is
	// only stripped when an opening one was seen, so backticks inside an
	// unfenced narrative are left alone.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// If the model added prose around the object, cut to the outermost braces.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}
