// internal/requestlog/requestlog.go

// Package requestlog appends one audit row per partner REST call to the
// request log table. Recording is best-effort: a failed append never fails
// the partner call it describes.
package requestlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lending-backend/internal/common/dynamo"
	"lending-backend/internal/common/logger"
)

// Entry describes one partner request/response pair.
type Entry struct {
	Service      string
	Component    string
	Function     string
	Method       string
	URL          string
	Headers      map[string]string
	RequestBody  interface{}
	ResponseBody interface{}
	StatusCode   int
}

// Recorder persists partner request entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) bool
}

// DynamoRecorder writes entries to the configured DynamoDB table.
type DynamoRecorder struct {
	store  *dynamo.Client
	table  string
	logger logger.Logger
}

func NewDynamoRecorder(store *dynamo.Client, table string, log logger.Logger) *DynamoRecorder {
	return &DynamoRecorder{
		store:  store,
		table:  table,
		logger: log.WithFields(map[string]interface{}{"component": "requestlog"}),
	}
}

func (r *DynamoRecorder) Record(ctx context.Context, entry Entry) bool {
	row := dynamo.Record{
		"ServiceRequestName": entry.Service,
		"ServiceRequestID":   entry.Service + "-" + uuid.NewString(),
		"LambdaOrLayerName":  entry.Component,
		"FunctionName":       entry.Function,
		"HttpTypeMethod":     entry.Method,
		"Url":                entry.URL,
		"Headers":            marshalOrNil(entry.Headers),
		"RequestBody":        marshalOrNil(entry.RequestBody),
		"ResponseBody":       marshalOrNil(entry.ResponseBody),
		"ResponseStatusCode": entry.StatusCode,
		"CreatedDate":        time.Now().Format("2006-01-02T15:04:05"),
	}

	if !r.store.PutRow(ctx, r.table, row) {
		r.logger.Error("failed to append partner request audit row", map[string]interface{}{
			"service": entry.Service,
			"url":     entry.URL,
		})
		return false
	}
	return true
}

func marshalOrNil(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(raw)
}

// NopRecorder discards entries, used in tests.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Entry) bool { return true }
