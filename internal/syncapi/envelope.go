package syncapi

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Batch is the payload of Upsert and Insert.
type Batch struct {
	Collection string          `json:"collection"`
	Records    json.RawMessage `json:"records"`
}

func EncodeBatch[T any](collection string, records []T) (*wrapperspb.BytesValue, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", collection, err)
	}
	b, err := json.Marshal(Batch{Collection: collection, Records: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", collection, err)
	}
	return wrapperspb.Bytes(b), nil
}

func DecodeBatch(msg *wrapperspb.BytesValue) (Batch, error) {
	var b Batch
	if err := json.Unmarshal(msg.GetValue(), &b); err != nil {
		return Batch{}, fmt.Errorf("decode batch: %v: %w", err, common.ErrorValidation)
	}
	if b.Collection == "" {
		return Batch{}, fmt.Errorf("decode batch: missing collection: %w", common.ErrorValidation)
	}
	return b, nil
}

// EncodeRecords marshals a SelectAll result.
func EncodeRecords[T any](records []T) (*wrapperspb.BytesValue, error) {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return wrapperspb.Bytes(raw), nil
}

// DecodeRecords parses a JSON array of T. An empty payload is an empty list.
func DecodeRecords[T any](raw []byte) ([]T, error) {
	records := make([]T, 0)
	if len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode records: %v: %w", err, common.ErrorValidation)
	}
	return records, nil
}
