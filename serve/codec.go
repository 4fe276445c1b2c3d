package serve

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zero-day-ai/advreg/advancement"
)

// Message field names.
const (
	fieldKey     = "key"
	fieldRecord  = "record"
	fieldRecords = "records"
)

// keyRequest builds a {"key": key} request.
func keyRequest(key string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldKey: structpb.NewStringValue(key),
	}}
}

// recordValue converts a record to a Struct value using its JSON form.
func recordValue(rec *advancement.Record) (*structpb.Value, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to convert record %s: %w", rec.ID, err)
	}
	return structpb.NewStructValue(st), nil
}

// decodeRecord converts a Struct back into a record.
func decodeRecord(st *structpb.Struct) (*advancement.Record, error) {
	if st == nil {
		return nil, fmt.Errorf("response has no record")
	}
	data, err := protojson.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to convert record: %w", err)
	}
	var rec advancement.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}
