package response

// Payload is a flat JSON object. Every body the API writes carries a
// boolean "success" field next to the handler-specific fields.
type Payload map[string]any

// Success builds a successful payload from the given fields.
func Success(fields Payload) Payload {
	p := Payload{"success": true}
	for k, v := range fields {
		p[k] = v
	}
	return p
}

// Error builds a failure payload. code is a machine-readable identifier,
// message is the human-facing text and details is omitted when nil.
func Error(code, message string, details any) Payload {
	p := Payload{
		"success": false,
		"code":    code,
		"error":   message,
	}
	if details != nil {
		p["details"] = details
	}
	return p
}

// With adds a field and returns the same payload for chaining.
func (p Payload) With(key string, value any) Payload {
	p[key] = value
	return p
}
