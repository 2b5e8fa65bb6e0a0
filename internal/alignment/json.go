package alignment

import "encoding/json"

// ToJSON renders an alignment Result as the tagged JSON schema used by the
// align_and_extract_corrections operation.
func (r Result) ToJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AlignToJSON aligns original against edited and returns the JSON
// representation of the result, falling back to "{}" if marshalling fails
// (which cannot happen for this struct shape, but keeps parity with a
// caller that never wants an error from a serialization convenience).
func AlignToJSON(original, edited string) string {
	result := Align(original, edited)
	out, err := result.ToJSON()
	if err != nil {
		return "{}"
	}
	return out
}
