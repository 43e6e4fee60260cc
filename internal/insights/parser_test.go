package insights

import (
	"errors"
	"testing"
)

func TestParseNarrative(t *testing.T) {
	valid := `{"summary":"ok","insights":["a","b","c"],"recommendations":["x","y","z"]}`

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "bare json", raw: valid},
		{name: "json fence", raw: "```json\n" + valid + "\n```"},
		{name: "plain fence", raw: "```\n" + valid + "\n```"},
		{name: "surrounding prose", raw: "Here is your analysis:\n" + valid + "\nHope this helps!"},
		{name: "nested under data", raw: `{"data":` + valid + `}`},
		{name: "not json", raw: "I cannot produce JSON right now.", wantErr: true},
		{name: "empty summary", raw: `{"summary":"  ","insights":["a","b","c"],"recommendations":["x","y","z"]}`, wantErr: true},
		{name: "two insights", raw: `{"summary":"ok","insights":["a","b"],"recommendations":["x","y","z"]}`, wantErr: true},
		{name: "four recommendations", raw: `{"summary":"ok","insights":["a","b","c"],"recommendations":["w","x","y","z"]}`, wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := parseNarrative(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparsable) {
					t.Fatalf("err = %v, want ErrUnparsable", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNarrative returned error: %v", err)
			}
			if n.Summary != "ok" {
				t.Errorf("Summary = %q", n.Summary)
			}
			if len(n.Insights) != 3 || len(n.Recommendations) != 3 {
				t.Errorf("lengths = %d/%d", len(n.Insights), len(n.Recommendations))
			}
		})
	}
}

func TestParseNarrativeBackticksWithoutFence(t *testing.T) {
	raw := "{\"summary\":\"consider tools like ``` budgeting apps\",\"insights\":[\"a\",\"b\",\"c\"],\"recommendations\":[\"x\",\"y\",\"z\"]}"

	n, err := parseNarrative(raw)
	if err != nil {
		t.Fatalf("parseNarrative returned error: %v", err)
	}
	if n.Summary != "consider tools like ``` budgeting apps" {
		t.Errorf("Summary = %q", n.Summary)
	}
}
