package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

const (
	MerchantIDHeader = "x-merchant-id"
	StoreIDHeader    = "x-store-id"
)

type contextKey string

const (
	merchantIDKey contextKey = "merchant_id"
	storeIDKey    contextKey = "store_id"
)

// Terminal identifies the point of sale a push comes from.
type Terminal struct {
	MerchantID string
	StoreID    string
}

// OutgoingContext attaches the terminal identity to outgoing gRPC metadata.
func OutgoingContext(ctx context.Context, t Terminal) context.Context {
	pairs := make([]string, 0, 4)
	if t.MerchantID != "" {
		pairs = append(pairs, MerchantIDHeader, t.MerchantID)
	}
	if t.StoreID != "" {
		pairs = append(pairs, StoreIDHeader, t.StoreID)
	}
	if len(pairs) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

// WithTerminal stores the identity in ctx, typically from a server interceptor.
func WithTerminal(ctx context.Context, t Terminal) context.Context {
	ctx = context.WithValue(ctx, merchantIDKey, t.MerchantID)
	return context.WithValue(ctx, storeIDKey, t.StoreID)
}

// FromIncoming reads the identity from incoming gRPC metadata.
func FromIncoming(ctx context.Context) Terminal {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return Terminal{}
	}
	return Terminal{
		MerchantID: first(md, MerchantIDHeader),
		StoreID:    first(md, StoreIDHeader),
	}
}

func GetMerchantID(ctx context.Context) string {
	// Check if added to context by interceptor
	if val, ok := ctx.Value(merchantIDKey).(string); ok {
		return val
	}
	return FromIncoming(ctx).MerchantID
}

func GetStoreID(ctx context.Context) string {
	if val, ok := ctx.Value(storeIDKey).(string); ok {
		return val
	}
	return FromIncoming(ctx).StoreID
}

func first(md metadata.MD, key string) string {
	if val := md.Get(key); len(val) > 0 {
		return val[0]
	}
	return ""
}
