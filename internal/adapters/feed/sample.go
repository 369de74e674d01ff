package feed

import (
	"context"
	_ "embed"
)

//go:embed sample.json
var sampleJSON []byte

// Sample is a built-in feed of three listings used when no remote feed is configured.
type Sample struct{}

func (Sample) GetListings(ctx context.Context) ([]map[string]any, error) {
	return decodeListings(sampleJSON)
}
