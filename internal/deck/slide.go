// Package deck loads the static slide deck and merges injected guest slides
// into it.
package deck

import "encoding/json"

// TypeGuestSubmission marks slides synthesized from guest submissions.
const TypeGuestSubmission = "guest-submission"

// Slide is a single deck entry. Keys other than the named fields are kept in
// Attributes and passed through to JSON unchanged.
type Slide struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type,omitempty"`
	Template   string         `yaml:"template,omitempty"`
	Text       string         `yaml:"text,omitempty"`
	GuestName  string         `yaml:"guestName,omitempty"`
	Duration   int            `yaml:"duration,omitempty"`
	Background string         `yaml:"background,omitempty"`
	InjectedAt int64          `yaml:"injectedAt,omitempty"`
	Attributes map[string]any `yaml:",inline"`
}

// IsInjected reports whether s came from a guest submission.
func (s Slide) IsInjected() bool {
	return s.Type == TypeGuestSubmission
}

// MarshalJSON flattens Attributes alongside the named fields.
func (s Slide) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Attributes)+8)
	for k, v := range s.Attributes {
		out[k] = v
	}
	out["id"] = s.ID
	setIf(out, "type", s.Type)
	setIf(out, "template", s.Template)
	setIf(out, "text", s.Text)
	setIf(out, "guestName", s.GuestName)
	setIf(out, "background", s.Background)
	if s.Duration != 0 {
		out["duration"] = s.Duration
	}
	if s.InjectedAt != 0 {
		out["injectedAt"] = s.InjectedAt
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Slide) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Slide{}
	fields := []struct {
		key string
		dst any
	}{
		{"id", &s.ID},
		{"type", &s.Type},
		{"template", &s.Template},
		{"text", &s.Text},
		{"guestName", &s.GuestName},
		{"duration", &s.Duration},
		{"background", &s.Background},
		{"injectedAt", &s.InjectedAt},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return err
		}
		delete(raw, f.key)
	}
	if len(raw) == 0 {
		return nil
	}
	s.Attributes = make(map[string]any, len(raw))
	for k, v := range raw {
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return err
		}
		s.Attributes[k] = decoded
	}
	return nil
}

func setIf(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}
