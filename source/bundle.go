package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zero-day-ai/advreg/advancement"
)

// BundleFormat tags binary bundles produced by EncodeBundle.
const BundleFormat = "advreg.bundle/v1"

// EncodeBundle serializes records into a binary bundle: a protobuf
// google.protobuf.Struct of the form {"format": BundleFormat, "advancements": [...]}.
// The encoding is deterministic for a given record sequence.
func EncodeBundle(records []advancement.Record) ([]byte, error) {
	if records == nil {
		records = []advancement.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal records: %w", err)
	}
	list := &structpb.ListValue{}
	if err := protojson.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("failed to convert records: %w", err)
	}
	msg := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"format":       structpb.NewStringValue(BundleFormat),
			"advancements": structpb.NewListValue(list),
		},
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

// DecodeBundle parses a bundle produced by EncodeBundle.
func DecodeBundle(data []byte) ([]advancement.Record, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	if format := msg.GetFields()["format"].GetStringValue(); format != BundleFormat {
		return nil, fmt.Errorf("unsupported bundle format %q", format)
	}
	list := msg.GetFields()["advancements"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("bundle has no advancements list")
	}
	raw, err := protojson.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to convert bundle: %w", err)
	}
	var records []advancement.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode bundle records: %w", err)
	}
	return records, nil
}

type bundleSource struct {
	path string
}

// Bundle returns a Source reading a binary bundle file.
func Bundle(path string) Source {
	return &bundleSource{path: path}
}

func (b *bundleSource) Name() string { return "bundle:" + b.path }

func (b *bundleSource) Load(ctx context.Context) ([]advancement.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	records, err := DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.path, err)
	}
	return records, nil
}
