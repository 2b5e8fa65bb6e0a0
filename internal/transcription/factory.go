package transcription

import (
	"fmt"
	"log"
)

// NewLocalProvider resolves tier's model path and tries the native CGO
// provider first, falling back to the whisper-cli shell-out provider if
// the bindings fail to initialize (e.g. no prebuilt libwhisper for this
// platform/arch). Returns whichever of the two providers it built.
func NewLocalProvider(tier Tier, threads int) (Provider, error) {
	path, err := ModelPath(tier)
	if err != nil {
		return nil, err
	}

	native, err := NewNativeLocalProvider(path, tier)
	if err == nil {
		return native, nil
	}
	log.Printf("transcription: native whisper.cpp bindings unavailable (%v), falling back to whisper-cli", err)

	cli := NewCLILocalProvider(path, threads)
	if !cli.IsConfigured() {
		return nil, fmt.Errorf("transcription: neither native bindings nor whisper-cli are available: %w", err)
	}
	return cli, nil
}
