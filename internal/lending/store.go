// internal/lending/store.go

// Package lending holds the loan-access resolver, the client identity
// reconciler and the typed store lookups they share.
package lending

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/redis/go-redis/v9"

	"lending-backend/internal/common/config"
	"lending-backend/internal/common/dynamo"
	"lending-backend/internal/common/logger"
	"lending-backend/internal/models"
)

// Store wraps the query/update primitives with the lending table layout.
// All reads are eventually consistent; the only write paths are the msisdn
// repair, its audit row and the loan partial update.
type Store struct {
	db        *dynamo.Client
	cache     *redis.Client
	tables    config.TablesConfig
	statusTTL time.Duration
	logger    logger.Logger
}

func NewStore(db *dynamo.Client, cache *redis.Client, cfg *config.Config, log logger.Logger) *Store {
	return &Store{
		db:        db,
		cache:     cache,
		tables:    cfg.Tables,
		statusTTL: time.Duration(cfg.Database.Redis.StatusTTLMinutes) * time.Minute,
		logger:    log.WithFields(map[string]interface{}{"component": "lending-store"}),
	}
}

// FindLoansByClient returns every loan row for the internal client id, in
// store order. No rows is an empty slice, not an error.
func (s *Store) FindLoansByClient(ctx context.Context, clientID string) ([]models.LoanRecord, error) {
	keyCond := expression.Key("Client").Equal(expression.Value(clientID))
	rows, err := s.db.QueryAll(ctx, s.tables.Loan, s.tables.LoanClientIndex, keyCond)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindOfferByClient fetches the offer row keyed by the external customer
// id. Absence is a valid state and returns (nil, nil).
func (s *Store) FindOfferByClient(ctx context.Context, customerID string) (*models.Offer, error) {
	var offer models.Offer
	found, err := s.db.GetRow(ctx, s.tables.Offers, dynamo.Record{"clientId": customerID}, &offer)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &offer, nil
}

// FindStatusByID resolves a pre-approval code against the status catalog.
// The catalog is static, so entries are served cache-aside from Redis; a
// cache outage degrades to a direct store read.
func (s *Store) FindStatusByID(ctx context.Context, statusID int) (*models.StatusCatalogEntry, error) {
	cacheKey := "lending:status:" + strconv.Itoa(statusID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var entry models.StatusCatalogEntry
			if err := json.Unmarshal([]byte(raw), &entry); err == nil {
				return &entry, nil
			}
		}
	}

	var entry models.StatusCatalogEntry
	found, err := s.db.GetRow(ctx, s.tables.StatusCatalog, dynamo.Record{"StatusID": statusID}, &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	if s.cache != nil {
		if raw, err := json.Marshal(entry); err == nil {
			s.cache.Set(ctx, cacheKey, raw, s.statusTTL)
		}
	}
	return &entry, nil
}

// FindClientByIDMTS looks the canonical client row up by its external
// system id. More than one match is tolerated with a warning; the first
// row wins.
func (s *Store) FindClientByIDMTS(ctx context.Context, idmts string) (models.ClientRecord, error) {
	keyCond := expression.Key("ClientIDMTS").Equal(expression.Value(idmts))
	rows, err := s.db.QueryAll(ctx, s.tables.Client, s.tables.ClientIDMTSIndex, keyCond)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		s.logger.Warn("more than one client row for external id", map[string]interface{}{
			"idmts": idmts,
			"count": len(rows),
		})
	}
	return rows[0], nil
}

// FindClientByMsisdn looks the canonical client row up by phone number.
func (s *Store) FindClientByMsisdn(ctx context.Context, msisdn string) (models.ClientRecord, error) {
	keyCond := expression.Key("Msisdn").Equal(expression.Value(msisdn))
	rows, err := s.db.QueryAll(ctx, s.tables.Client, s.tables.ClientMsisdnIndex, keyCond)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		s.logger.Warn("more than one client row for msisdn", map[string]interface{}{
			"msisdn": msisdn,
			"count":  len(rows),
		})
	}
	return rows[0], nil
}

// UpdateClientMsisdn overwrites the stored phone number. Plain last-write-
// wins: no optimistic lock, so two concurrent repairs of the same client
// race and both may audit. Known limitation, accepted upstream.
func (s *Store) UpdateClientMsisdn(ctx context.Context, clientID, msisdn string) bool {
	return s.db.UpdateFields(ctx, s.tables.Client,
		dynamo.Record{"ClientID": clientID},
		map[string]interface{}{"Msisdn": msisdn},
		"LastUpdate")
}

// AppendAuditRow appends one phone-repair audit row. The table is
// append-only; rows are never updated or deleted.
func (s *Store) AppendAuditRow(ctx context.Context, row models.UpdatedCustomerAccount) bool {
	return s.db.PutRow(ctx, s.tables.UpdatedAccounts, row)
}

// UpdateLoan applies a partial update to a loan row, stamping LastUpdate.
func (s *Store) UpdateLoan(ctx context.Context, loanID int64, fields map[string]interface{}) bool {
	return s.db.UpdateFields(ctx, s.tables.Loan,
		dynamo.Record{"LoanID": loanID},
		fields,
		"LastUpdate")
}

// MovementsByClient returns the offer movement trail for a client,
// optionally narrowed by a filter condition.
func (s *Store) MovementsByClient(ctx context.Context, clientID string, opts ...dynamo.QueryOption) ([]dynamo.Record, error) {
	keyCond := expression.Key("ClientId").Equal(expression.Value(clientID))
	return s.db.QueryAll(ctx, s.tables.Movements, s.tables.MovementsClientIdx, keyCond, opts...)
}

// defaultAgentName is the SMS copy fallback when no cash point matches.
const defaultAgentName = "al PTM mas cercano"

// AgentPointName resolves a cash-point code to its display name, falling
// back to a fixed default on miss or store error.
func (s *Store) AgentPointName(ctx context.Context, agentCode string) string {
	keyCond := expression.Key("AgentCode").Equal(expression.Value(agentCode))
	rows, err := s.db.QueryAll(ctx, s.tables.Agents, s.tables.AgentCodeIndex, keyCond,
		dynamo.WithScanForward(true))
	if err != nil || len(rows) == 0 {
		return defaultAgentName
	}
	name, _ := rows[0]["AgentFantasyName"].(string)
	if name == "" {
		return defaultAgentName
	}
	return name
}

// FindSMSTemplate fetches a template row by template id and country.
func (s *Store) FindSMSTemplate(ctx context.Context, templateID, country string) (*models.SMSTemplate, error) {
	var tpl models.SMSTemplate
	found, err := s.db.GetRow(ctx, s.tables.SMSTemplates,
		dynamo.Record{"SMSId": templateID, "Country": country}, &tpl)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("sms template %s/%s not found", templateID, country)
	}
	return &tpl, nil
}

// AppendClientSMS queues one SMS row.
func (s *Store) AppendClientSMS(ctx context.Context, row models.ClientSMS) bool {
	return s.db.PutRow(ctx, s.tables.ClientSMS, row)
}
