// internal/reporting/mirror.go
package reporting

import (
	"context"
	"time"

	"lending-backend/internal/common/logger"
	"lending-backend/internal/lending"
	"lending-backend/internal/notify"
)

// AccessMirror decorates the access resolver, copying every decision into
// the reporting schema. The copy is best-effort and adds no failure mode to
// the decision itself.
type AccessMirror struct {
	next interface {
		ValidateAccess(ctx context.Context, clientID, customerID string) lending.AccessResult
	}
	store *Store
}

func NewAccessMirror(next *lending.AccessResolver, store *Store) *AccessMirror {
	return &AccessMirror{next: next, store: store}
}

func (m *AccessMirror) ValidateAccess(ctx context.Context, clientID, customerID string) lending.AccessResult {
	result := m.next.ValidateAccess(ctx, clientID, customerID)

	m.store.RecordAccessDecision(ctx, AccessDecisionRow{
		ClientID:    clientID,
		Flow:        result.Flow,
		Access:      result.Access,
		Success:     result.Success,
		TotalLoans:  result.TotalLoans,
		IsRecurrent: result.IsRecurrent,
		Error:       result.Error,
		DecidedAt:   time.Now().UTC(),
	})
	return result
}

// ReconcileMirror decorates the reconciler, copying each repair.
type ReconcileMirror struct {
	next interface {
		Reconcile(ctx context.Context, rawIdentifier string, isMsisdn bool, process string) lending.ReconcileResult
	}
	store *Store
}

func NewReconcileMirror(next *lending.Reconciler, store *Store) *ReconcileMirror {
	return &ReconcileMirror{next: next, store: store}
}

func (m *ReconcileMirror) Reconcile(ctx context.Context, rawIdentifier string, isMsisdn bool, process string) lending.ReconcileResult {
	result := m.next.Reconcile(ctx, rawIdentifier, isMsisdn, process)

	if result.Edited {
		m.store.RecordRepair(ctx, RepairRow{
			ClientID:   result.IDMTS,
			NewMsisdn:  result.Msisdn,
			Process:    process,
			RepairedAt: time.Now().UTC(),
		})
	}
	return result
}

// RepairWatch polls the repair count and mails the operations inbox when
// repairs in the window exceed the threshold. Blocks until ctx is done.
func RepairWatch(ctx context.Context, store *Store, dispatcher *notify.Dispatcher, recipient string, window time.Duration, threshold int, log logger.Logger) {
	wlog := log.WithFields(map[string]interface{}{"component": "repair-watch"})
	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := store.RepairCountSince(ctx, time.Now().UTC().Add(-window))
			if err != nil {
				wlog.Error("repair count query failed", map[string]interface{}{"error": err})
				continue
			}
			if count < threshold {
				continue
			}
			wlog.Warn("repair spike detected", map[string]interface{}{
				"count":     count,
				"threshold": threshold,
			})
			_ = dispatcher.SendAlertEmail(ctx, recipient, "msisdn repair spike",
				notify.RenderTemplate("{{count}} msisdn repairs in the last {{window}} (threshold {{threshold}})",
					map[string]interface{}{
						"count":     count,
						"window":    window.String(),
						"threshold": threshold,
					}))
		}
	}
}
