package remote

import (
	"encoding/json"
	"fmt"

	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	FieldRemoteID  = "remoteId"
	FieldDuplicate = "duplicate"
)

// EncodeTransaction converts a transaction to the generic struct message sent
// over gRPC. Field names follow the stored JSON record.
func EncodeTransaction(tx *model.Transaction) (*structpb.Struct, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction %s: %w", tx.ID, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func DecodeTransaction(msg *structpb.Struct) (*model.Transaction, error) {
	data, err := json.Marshal(msg.AsMap())
	if err != nil {
		return nil, err
	}
	var tx model.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return &tx, nil
}

func EncodeAck(remoteID string, duplicate bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldRemoteID:  structpb.NewStringValue(remoteID),
		FieldDuplicate: structpb.NewBoolValue(duplicate),
	}}
}

func DecodeAck(msg *structpb.Struct) (remoteID string, duplicate bool) {
	fields := msg.GetFields()
	return fields[FieldRemoteID].GetStringValue(), fields[FieldDuplicate].GetBoolValue()
}
