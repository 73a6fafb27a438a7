// internal/common/dynamo/query.go
package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	apperrors "lending-backend/internal/common/errors"
	"lending-backend/internal/common/metrics"
)

// QueryOption narrows or reorders a paginated query.
type QueryOption func(*queryOptions)

type queryOptions struct {
	filter           *expression.ConditionBuilder
	scanIndexForward *bool
}

// WithFilter applies a post-read filter condition to every page.
func WithFilter(cond expression.ConditionBuilder) QueryOption {
	return func(o *queryOptions) {
		o.filter = &cond
	}
}

// WithScanForward sets the index traversal direction.
func WithScanForward(ascending bool) QueryOption {
	return func(o *queryOptions) {
		o.scanIndexForward = &ascending
	}
}

// QueryAll runs a conditioned lookup against an indexed partition and
// returns the full result set in encounter order, transparently following
// continuation keys. Aggregation is eager; no page cap is enforced, so a
// very large partition grows memory with the result set.
//
// A failed page yields a StoreQueryError carrying the rows fetched so far.
// An empty first page yields an empty slice and a nil error; callers
// distinguish "no rows" from "error" by the error value.
func (c *Client) QueryAll(ctx context.Context, table, index string, keyCond expression.KeyConditionBuilder, opts ...QueryOption) ([]Record, error) {
	options := queryOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if options.filter != nil {
		builder = builder.WithFilter(*options.filter)
	}
	expr, err := builder.Build()
	if err != nil {
		c.logger.Error("failed to build query expression", map[string]interface{}{
			"table": table,
			"index": index,
			"error": err,
		})
		return nil, &apperrors.StoreQueryError{Table: table, Index: index, Cause: err}
	}

	input := &dynamodb.QueryInput{
		TableName:                 &table,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          options.scanIndexForward,
	}
	if index != "" {
		input.IndexName = &index
	}

	rows := make([]Record, 0)
	pages := 0

	for {
		out, err := c.api.Query(ctx, input)
		if err != nil {
			c.logger.Error("paginated query failed", map[string]interface{}{
				"table":       table,
				"index":       index,
				"pagesOK":     pages,
				"rowsFetched": len(rows),
				"error":       err,
			})
			return nil, &apperrors.StoreQueryError{
				Table:        table,
				Index:        index,
				FetchedCount: len(rows),
				Partial:      rows,
				Cause:        err,
			}
		}
		pages++

		if len(out.Items) > 0 {
			var page []Record
			if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
				return nil, &apperrors.StoreQueryError{
					Table:        table,
					Index:        index,
					FetchedCount: len(rows),
					Partial:      rows,
					Cause:        err,
				}
			}
			rows = append(rows, page...)
		}

		if out.LastEvaluatedKey == nil || len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	metrics.StoreQueryPages.WithLabelValues(table).Observe(float64(pages))

	c.logger.Debug("paginated query complete", map[string]interface{}{
		"table": table,
		"index": index,
		"pages": pages,
		"rows":  len(rows),
	})
	return rows, nil
}
