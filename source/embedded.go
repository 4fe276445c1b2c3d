package source

import (
	"context"
	_ "embed"

	"github.com/zero-day-ai/advreg/advancement"
)

//go:embed data/vanilla.json
var vanillaJSON []byte

// VanillaJSON returns a copy of the embedded vanilla data document.
func VanillaJSON() []byte {
	out := make([]byte, len(vanillaJSON))
	copy(out, vanillaJSON)
	return out
}

type embeddedSource struct{}

// Embedded returns the Source for the vanilla advancement set compiled into the binary.
func Embedded() Source {
	return embeddedSource{}
}

func (embeddedSource) Name() string { return "embedded" }

func (embeddedSource) Load(ctx context.Context) ([]advancement.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decodeJSON(vanillaJSON)
}
