package mcp

// ResponseEnvelope wraps every successful tool result.
type ResponseEnvelope struct {
	Data     any               `json:"data"`
	Guidance []string          `json:"guidance,omitempty"`
	Visuals  map[string]string `json:"visuals,omitempty"`
}

// WrapResponse builds an envelope, dropping empty visuals.
func WrapResponse(data any, guidance []string, visuals map[string]string) ResponseEnvelope {
	env := ResponseEnvelope{Data: data, Guidance: guidance}
	for k, v := range visuals {
		if v == "" {
			continue
		}
		if env.Visuals == nil {
			env.Visuals = make(map[string]string)
		}
		env.Visuals[k] = v
	}
	return env
}
