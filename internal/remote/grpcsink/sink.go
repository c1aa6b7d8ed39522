// Package grpcsink pushes transactions to the ingest service over gRPC.
package grpcsink

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-pos-agent/internal/auth"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Sink struct {
	conn     grpc.ClientConnInterface
	terminal auth.Terminal
	logger   logger.ZapLogger
}

var _ remote.Sink = (*Sink)(nil)

func New(conn grpc.ClientConnInterface, terminal auth.Terminal, log logger.ZapLogger) *Sink {
	return &Sink{
		conn:     conn,
		terminal: terminal,
		logger:   log,
	}
}

func (s *Sink) Push(ctx context.Context, tx *model.Transaction) (string, error) {
	req, err := remote.EncodeTransaction(tx)
	if err != nil {
		return "", remote.Rejected(err)
	}

	ctx = auth.OutgoingContext(ctx, s.terminal)
	ctx = metadata.AppendToOutgoingContext(ctx, remote.IdempotencyKeyHeader, tx.ID)

	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, remote.PushMethod, req, resp); err != nil {
		return "", classify(err)
	}

	remoteID, duplicate := remote.DecodeAck(resp)
	if remoteID == "" {
		return "", remote.Transient(errors.New("ingest returned an empty remote id"))
	}
	if duplicate {
		s.logger.Debug("remote already had transaction", zap.String("transaction_id", tx.ID), zap.String("remote_id", remoteID))
	}
	return remoteID, nil
}

// classify maps gRPC status codes to the remote error kinds. Codes that mean
// the request itself is unacceptable are permanent; the rest are retried.
// Unimplemented is retried: it means the target does not serve ingest yet.
func classify(err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument,
		codes.FailedPrecondition,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.OutOfRange:
		return remote.Rejected(err)
	default:
		return remote.Transient(err)
	}
}
