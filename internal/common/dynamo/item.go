// internal/common/dynamo/item.go
package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"lending-backend/internal/common/metrics"
)

// GetRow fetches a single item by primary key and decodes it into dst,
// which must be a pointer. The first return is false when the row is
// absent; absence is not an error.
func (c *Client) GetRow(ctx context.Context, table string, key Record, dst interface{}) (bool, error) {
	keyAV, err := attributevalue.MarshalMap(key)
	if err != nil {
		return false, err
	}

	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &table,
		Key:       keyAV,
	})
	if err != nil {
		c.logger.Error("get item failed", map[string]interface{}{
			"table": table,
			"error": err,
		})
		return false, err
	}

	if len(out.Item) == 0 {
		return false, nil
	}

	if err := attributevalue.UnmarshalMap(out.Item, dst); err != nil {
		return false, err
	}
	return true, nil
}

// PutRow writes one item. Returns false and logs on any store error.
func (c *Client) PutRow(ctx context.Context, table string, item interface{}) bool {
	itemAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		c.logger.Error("failed to serialize item", map[string]interface{}{
			"table": table,
			"error": err,
		})
		return false
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &table,
		Item:      itemAV,
	})
	if err != nil {
		metrics.StoreWriteFailures.WithLabelValues(table, "put").Inc()
		c.logger.Error("put item failed", map[string]interface{}{
			"table": table,
			"error": err,
		})
		return false
	}

	return true
}

// DeleteRow removes one item by primary key. Returns false and logs on any
// store error.
func (c *Client) DeleteRow(ctx context.Context, table string, key Record) bool {
	keyAV, err := attributevalue.MarshalMap(key)
	if err != nil {
		c.logger.Error("failed to serialize delete key", map[string]interface{}{
			"table": table,
			"error": err,
		})
		return false
	}

	_, err = c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &table,
		Key:       keyAV,
	})
	if err != nil {
		metrics.StoreWriteFailures.WithLabelValues(table, "delete").Inc()
		c.logger.Error("delete item failed", map[string]interface{}{
			"table": table,
			"key":   key,
			"error": err,
		})
		return false
	}

	return true
}
