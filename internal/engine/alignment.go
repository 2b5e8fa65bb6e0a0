package engine

import (
	"encoding/json"

	"github.com/leonardotrapani/flowwispr/internal/alignment"
)

// AlignAndExtractCorrections is the FFI-parity helper: it aligns original
// and edited text and extracts high-confidence correction candidates,
// returning the full result as one JSON payload. This is a pure function —
// it does not persist anything, matching the original's standalone FFI
// helper.
func (e *Engine) AlignAndExtractCorrections(original, edited string) (string, error) {
	result := alignment.Align(original, edited)

	data, err := json.Marshal(result)
	if err != nil {
		return "", newEngineError(KindSerialization, "marshal alignment result", err)
	}
	return string(data), nil
}
