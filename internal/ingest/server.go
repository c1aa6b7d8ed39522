// Package ingest is the reference remote for the POS agent: a gRPC service
// that accepts pushed transactions once per transaction id, plus a listener
// that claims OrderCreated events from Kafka in the same ledger.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-pos-agent/internal/auth"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/fekuna/omnipos-pos-agent/internal/remote"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type TransactionIngestServer interface {
	PushTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type Handler struct {
	ledger Ledger
	logger logger.ZapLogger
}

var _ TransactionIngestServer = (*Handler)(nil)

func NewHandler(ledger Ledger, log logger.ZapLogger) *Handler {
	return &Handler{
		ledger: ledger,
		logger: log,
	}
}

func (h *Handler) PushTransaction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tx, err := remote.DecodeTransaction(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validate(ctx, tx); err != nil {
		h.logger.Warn("rejected transaction", zap.String("transaction_id", tx.ID), zap.Error(err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	remoteID, duplicate, err := h.ledger.Claim(ctx, tx.ID, uuid.NewString())
	if err != nil {
		h.logger.Error("failed to claim transaction", zap.String("transaction_id", tx.ID), zap.Error(err))
		return nil, status.Error(codes.Unavailable, "ledger unavailable")
	}

	h.logger.Info("transaction ingested",
		zap.String("transaction_id", tx.ID),
		zap.String("remote_id", remoteID),
		zap.Bool("duplicate", duplicate),
		zap.String("merchant_id", auth.GetMerchantID(ctx)),
		zap.String("store_id", auth.GetStoreID(ctx)),
	)
	return remote.EncodeAck(remoteID, duplicate), nil
}

func validate(ctx context.Context, tx *model.Transaction) error {
	if tx.ID == "" {
		return errors.New("transaction id is required")
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if keys := md.Get(remote.IdempotencyKeyHeader); len(keys) > 0 && keys[0] != tx.ID {
			return fmt.Errorf("idempotency key %q does not match transaction %s", keys[0], tx.ID)
		}
	}
	if len(tx.Items) == 0 {
		return errors.New("transaction has no line items")
	}
	for _, item := range tx.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("line item %q has quantity %d", item.Name, item.Quantity)
		}
	}
	return tx.VerifyTotal()
}

// ContextInterceptor copies the terminal identity from metadata into the
// request context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		return handler(auth.WithTerminal(ctx, auth.FromIncoming(ctx)), req)
	}
}

func Register(s grpc.ServiceRegistrar, srv TransactionIngestServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: remote.ServiceName,
	HandlerType: (*TransactionIngestServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PushTransaction",
			Handler:    pushTransactionHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/pos/v1/ingest.proto",
}

func pushTransactionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransactionIngestServer).PushTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: remote.PushMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransactionIngestServer).PushTransaction(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
