// internal/lending/reconcile.go
package lending

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lending-backend/internal/common/logger"
	"lending-backend/internal/common/metrics"
	"lending-backend/internal/identity"
	"lending-backend/internal/models"
)

// ReconcileResult reports one identity reconciliation run. Field names are
// a compatibility contract with the boundary layer.
type ReconcileResult struct {
	Success bool                `json:"success"`
	Edited  bool                `json:"edited"`
	Client  models.ClientRecord `json:"client"`
	Msisdn  string              `json:"msisdn"`
	IDMTS   string              `json:"idmts"`
}

func defaultReconcileResult() ReconcileResult {
	return ReconcileResult{Client: models.ClientRecord{}}
}

// ReconcileStore is the slice of the lending store the reconciler touches.
type ReconcileStore interface {
	FindClientByIDMTS(ctx context.Context, idmts string) (models.ClientRecord, error)
	UpdateClientMsisdn(ctx context.Context, clientID, msisdn string) bool
	AppendAuditRow(ctx context.Context, row models.UpdatedCustomerAccount) bool
}

// Reconciler detects drift between the phone number stored on the client
// row and the canonical one held by the identity switch, and repairs it
// with an audit trail.
type Reconciler struct {
	store    ReconcileStore
	profiles identity.ProfileFetcher
	logger   logger.Logger
}

func NewReconciler(store ReconcileStore, profiles identity.ProfileFetcher, log logger.Logger) *Reconciler {
	return &Reconciler{
		store:    store,
		profiles: profiles,
		logger:   log.WithFields(map[string]interface{}{"component": "reconciler"}),
	}
}

// truncateShortMsisdn cuts a one-character phone string down to its first
// character. Inherited verbatim from the previous implementation of this
// routine; isolated here so a future fix is a one-line change.
func truncateShortMsisdn(msisdn string) string {
	if len(msisdn) == 1 {
		return msisdn[:1]
	}
	return msisdn
}

// Reconcile fetches the canonical profile for rawIdentifier (a phone
// number when isMsisdn, the external client id otherwise), compares it to
// the stored client row and overwrites the stored phone when they differ.
// The repair is last-write-wins and is followed by one audit row; edited
// reports true only when both writes succeed.
//
// Like the access resolver, no failure propagates: every exit returns a
// well-formed result and callers inspect the success flag.
func (r *Reconciler) Reconcile(ctx context.Context, rawIdentifier string, isMsisdn bool, process string) ReconcileResult {
	result := defaultReconcileResult()

	profile, err := r.fetchProfile(ctx, rawIdentifier, isMsisdn)
	if err != nil || profile == nil {
		r.logger.Info("identity switch has no profile for identifier", map[string]interface{}{
			"isMsisdn": isMsisdn,
			"error":    err,
		})
		return r.finish(result, "profile_not_found")
	}

	cellNumber, idmts, ok := r.canonicalPair(rawIdentifier, isMsisdn, profile)
	if !ok {
		return r.finish(result, "metadata_incomplete")
	}
	result.Msisdn = cellNumber

	client, err := r.store.FindClientByIDMTS(ctx, idmts)
	result.IDMTS = idmts
	if err != nil || client == nil {
		r.logger.Info("no client row for external id", map[string]interface{}{
			"idmts": idmts,
			"error": err,
		})
		return r.finish(result, "client_not_found")
	}

	storedMsisdn, hasMsisdn := models.ClientMsisdn(client)
	if !hasMsisdn {
		return r.finish(result, "client_not_found")
	}

	if storedMsisdn == cellNumber {
		result.Client = client
		result.Success = true
		return r.finish(result, "in_sync")
	}

	clientID := models.ClientID(client)
	if !r.store.UpdateClientMsisdn(ctx, clientID, cellNumber) {
		return r.finish(result, "repair_failed")
	}

	audit := models.UpdatedCustomerAccount{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		OldMsisdn:  storedMsisdn,
		NewMsisdn:  cellNumber,
		UpdateDate: time.Now().Format("2006-01-02T15:04:05"),
		Process:    process,
	}
	if !r.store.AppendAuditRow(ctx, audit) {
		return r.finish(result, "audit_failed")
	}

	result.Success = true
	result.Edited = true
	return r.finish(result, "repaired")
}

func (r *Reconciler) fetchProfile(ctx context.Context, rawIdentifier string, isMsisdn bool) (*identity.Profile, error) {
	if isMsisdn {
		return r.profiles.AccountInfoByMsisdn(ctx, rawIdentifier)
	}
	return r.profiles.AccountInfoByClientID(ctx, rawIdentifier)
}

// canonicalPair extracts the canonical phone and external id from the
// switch profile. For a phone-keyed lookup the phone is the input itself;
// for an id-keyed lookup both come out of the metadata block.
func (r *Reconciler) canonicalPair(rawIdentifier string, isMsisdn bool, profile *identity.Profile) (cellNumber, idmts string, ok bool) {
	idmts, hasID := profile.Metadata.Get(identity.MetadataClientID)

	if isMsisdn {
		cellNumber = rawIdentifier
	} else {
		var hasMsisdn bool
		cellNumber, hasMsisdn = profile.Metadata.Get(identity.MetadataMsisdn)
		if !hasMsisdn {
			return "", "", false
		}
		cellNumber = truncateShortMsisdn(cellNumber)
	}

	if !hasID || cellNumber == "" {
		return "", "", false
	}
	return cellNumber, idmts, true
}

func (r *Reconciler) finish(result ReconcileResult, outcome string) ReconcileResult {
	metrics.ReconcileResults.WithLabelValues(outcome).Inc()

	r.logger.Info("reconcile result", map[string]interface{}{
		"success": result.Success,
		"edited":  result.Edited,
		"msisdn":  result.Msisdn,
		"idmts":   result.IDMTS,
		"outcome": outcome,
	})
	return result
}
