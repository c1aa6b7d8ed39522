// Package status builds the one-line sync status shown to the cashier,
// such as "Offline: 3 pending transactions", in the terminal's locale.
package status

import (
	"context"
	"embed"
	"fmt"

	"github.com/fekuna/omnipos-pos-agent/internal/connectivity"
	"github.com/fekuna/omnipos-pos-agent/internal/model"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

type Source interface {
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
}

// SyncState reports whether a sync pass is running.
type SyncState interface {
	Running() bool
}

type Snapshot struct {
	Online   bool
	Syncing  bool
	Pending  int
	Rejected int
	Message  string
	// RejectedMessage is empty when nothing was rejected.
	RejectedMessage string
}

type Reporter struct {
	source    Source
	monitor   connectivity.Monitor
	sync      SyncState
	localizer *i18n.Localizer
}

// NewBundle loads the embedded translations. English is the fallback.
func NewBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	for _, file := range []string{"locales/active.en.json", "locales/active.id.json"} {
		if _, err := bundle.LoadMessageFileFS(locales, file); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return bundle, nil
}

// NewReporter returns a reporter for the given locale, e.g. "en" or "id".
// sync may be nil when no coordinator is running.
func NewReporter(source Source, monitor connectivity.Monitor, sync SyncState, locale string) (*Reporter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	return &Reporter{
		source:    source,
		monitor:   monitor,
		sync:      sync,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
	}, nil
}

func (r *Reporter) Snapshot(ctx context.Context) (*Snapshot, error) {
	txs, err := r.source.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		Online:  r.monitor.IsOnline(),
		Syncing: r.sync != nil && r.sync.Running(),
	}
	for _, tx := range txs {
		switch tx.SyncStatus {
		case model.SyncStatusUnsynced:
			s.Pending++
		case model.SyncStatusRejected:
			s.Rejected++
		}
	}

	var id string
	switch {
	case !s.Online:
		id = "StatusOffline"
	case s.Pending == 0:
		id = "StatusSynced"
	case s.Syncing:
		id = "StatusSyncing"
	default:
		id = "StatusPending"
	}
	if s.Message, err = r.localize(id, s.Pending); err != nil {
		return nil, err
	}
	if s.Rejected > 0 {
		if s.RejectedMessage, err = r.localize("StatusRejected", s.Rejected); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *Reporter) localize(id string, count int) (string, error) {
	return r.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]int{"Count": count},
	})
}
