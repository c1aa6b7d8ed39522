// Package remote defines the contract the sync coordinator pushes
// transactions through, and the wire shape shared by the sinks and the
// ingest service.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-pos-agent/internal/apperr"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
)

const (
	ServiceName = "omnipos.pos.v1.TransactionIngestService"
	PushMethod  = "/" + ServiceName + "/PushTransaction"

	// IdempotencyKeyHeader carries the transaction id on every push.
	IdempotencyKeyHeader = "idempotency-key"
)

// Sink pushes one transaction to the remote system and returns the remote
// identifier. Pushing the same transaction id again must return the same
// remote identifier instead of creating a second record.
//
// Errors wrap apperr.ErrRemoteRejected when the remote will never accept the
// transaction, and apperr.ErrRemoteTransient otherwise.
type Sink interface {
	Push(ctx context.Context, tx *model.Transaction) (string, error)
}

func Rejected(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrRemoteRejected, err)
}

func Transient(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrRemoteTransient, err)
}

func IsRejected(err error) bool {
	return errors.Is(err, apperr.ErrRemoteRejected)
}
