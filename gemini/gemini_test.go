package gemini

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain object", in: `{"a":"b"}`, want: `{"a":"b"}`},
		{name: "surrounding whitespace", in: "\n  {\"a\":1}  \n", want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewGenerator_Options(t *testing.T) {
	g := NewGenerator(nil, "gemini-2.5-flash", WithTemperature(0.2))

	if g.Model() != "gemini-2.5-flash" {
		t.Errorf("Model() = %q, want gemini-2.5-flash", g.Model())
	}
	cfg := g.config()
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("config().Temperature = %v, want 0.2", cfg.Temperature)
	}
	if cfg.ResponseMIMEType != "" {
		t.Errorf("config().ResponseMIMEType = %q, want empty", cfg.ResponseMIMEType)
	}

	if NewGenerator(nil, "m").config().Temperature != nil {
		t.Error("config().Temperature should be unset without WithTemperature")
	}
}
