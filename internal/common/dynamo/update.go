// internal/common/dynamo/update.go
package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"lending-backend/internal/common/metrics"
)

// timestampLayout is ISO-8601 at second precision, matching the format the
// rest of the platform writes into *Date attributes.
const timestampLayout = "2006-01-02T15:04:05"

// UpdateFields turns a field-value mapping into a single atomic partial
// write. Every field gets an aliased name and value placeholder so
// store-reserved words cannot collide, and all fields land in one combined
// SET statement. When updateDateField is non-empty a current timestamp is
// appended to the update set under that name.
//
// The write is last-write-wins: no read-modify-write cycle and no
// concurrency token. Failures are reported as a false return, never as a
// panic or error value; the cause is logged.
func (c *Client) UpdateFields(ctx context.Context, table string, key Record, fields map[string]interface{}, updateDateField string) bool {
	if len(fields) == 0 && updateDateField == "" {
		return false
	}

	toUpdate := make(map[string]interface{}, len(fields)+1)
	for name, value := range fields {
		toUpdate[name] = value
	}
	if updateDateField != "" {
		toUpdate[updateDateField] = time.Now().Format(timestampLayout)
	}

	var setClauses []string
	names := make(map[string]string, len(toUpdate))
	values := make(map[string]types.AttributeValue, len(toUpdate))

	for name, value := range toUpdate {
		av, err := coerceValue(value)
		if err != nil {
			c.logger.Error("failed to serialize update value", map[string]interface{}{
				"table": table,
				"field": name,
				"error": err,
			})
			return false
		}
		setClauses = append(setClauses, fmt.Sprintf("#%s = :%s", name, name))
		names["#"+name] = name
		values[":"+name] = av
	}

	keyAV, err := attributevalue.MarshalMap(key)
	if err != nil {
		c.logger.Error("failed to serialize update key", map[string]interface{}{
			"table": table,
			"error": err,
		})
		return false
	}

	updateExpression := "set " + strings.Join(setClauses, ", ")

	_, err = c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &table,
		Key:                       keyAV,
		UpdateExpression:          &updateExpression,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		metrics.StoreWriteFailures.WithLabelValues(table, "update").Inc()
		c.logger.Error("partial update failed", map[string]interface{}{
			"table": table,
			"error": err,
		})
		return false
	}

	return true
}

// coerceValue applies the numeric coercion policy: booleans pass through,
// integers serialize as integers, and floating values are rendered as their
// shortest decimal string so repeated writes of the same value never drift
// through a binary-float representation.
func coerceValue(value interface{}) (types.AttributeValue, error) {
	switch v := value.(type) {
	case bool:
		return &types.AttributeValueMemberBOOL{Value: v}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(v), 10)}, nil
	case int32:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(v), 10)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}, nil
	case float32:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(v), 'f', -1, 32)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	default:
		return attributevalue.Marshal(value)
	}
}
