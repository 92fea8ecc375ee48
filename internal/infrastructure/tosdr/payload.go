package tosdr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Every API payload wraps its data in a "parameters" object.
type envelope[T any] struct {
	Parameters *T `json:"parameters"`
}

type serviceListPayload struct {
	Services []struct {
		ID flexString `json:"id"`
	} `json:"services"`
}

// Detail payloads carry their own id; the requested id is used instead.
type servicePayload struct {
	URL    string          `json:"url"`
	URLs   []string        `json:"urls"`
	Rating json.RawMessage `json:"rating"`
	Points []pointPayload  `json:"points"`
}

type pointPayload struct {
	Status string     `json:"status"`
	CaseID flexString `json:"case_id"`
}

type casePayload struct {
	Title          *string         `json:"title"`
	Classification string          `json:"classification"`
	Score          json.RawMessage `json:"score"`
}

// flexString accepts ids sent either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// parseInt reads a base-10 integer sent as a number or a numeric string.
func parseInt(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("missing value")
	}

	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = strings.TrimSpace(s)
	}

	if v, err := strconv.Atoi(text); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %s", raw)
	}
	return int(f), nil
}
