package sources

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexName decodes the teacher field of an upstream payload, which is either
// a plain string or an object with nombre/apellidos. Missing or unusable
// values normalize to "?" so a half-broken row still renders on the panel.
type flexName string

func (n *flexName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = flexName(orQuestionMark(s))
		return nil
	}
	var obj struct {
		First string `json:"nombre"`
		Last  string `json:"apellidos"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		*n = flexName(orQuestionMark(strings.TrimSpace(obj.First + " " + obj.Last)))
		return nil
	}
	*n = "?"
	return nil
}

func orQuestionMark(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}

// flexInt decodes a class period sent as either a JSON number or a numeric
// string. Unusable values normalize to the first period.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = flexInt(n)
			return nil
		}
	}
	*f = 0
	return nil
}

// periodOr1 clamps a parsed period to a usable value.
func periodOr1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
