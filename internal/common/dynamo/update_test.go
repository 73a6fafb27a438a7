// internal/common/dynamo/update_test.go
package dynamo

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-backend/internal/common/logger"
)

func TestUpdateFields_BuildsAliasedSetStatement(t *testing.T) {
	api := &fakeAPI{}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	ok := client.UpdateFields(context.Background(), "Loan",
		Record{"LoanID": 12},
		map[string]interface{}{"Status": "ACTIVE", "Disbursed": true},
		"")

	require.True(t, ok)
	require.Len(t, api.updateInputs, 1)

	input := api.updateInputs[0]
	expr := *input.UpdateExpression
	assert.True(t, strings.HasPrefix(expr, "set "))
	assert.Contains(t, expr, "#Status = :Status")
	assert.Contains(t, expr, "#Disbursed = :Disbursed")
	// One combined statement, not one per field.
	assert.Equal(t, 1, strings.Count(expr, "set "))

	assert.Equal(t, "Status", input.ExpressionAttributeNames["#Status"])
	status, ok := input.ExpressionAttributeValues[":Status"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "ACTIVE", status.Value)

	disbursed, ok := input.ExpressionAttributeValues[":Disbursed"].(*types.AttributeValueMemberBOOL)
	require.True(t, ok)
	assert.True(t, disbursed.Value)
}

func TestUpdateFields_AppendsTimestampField(t *testing.T) {
	api := &fakeAPI{}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	ok := client.UpdateFields(context.Background(), "Client",
		Record{"ClientID": "c-1"},
		map[string]interface{}{"Msisdn": "0981123456"},
		"LastUpdate")

	require.True(t, ok)
	require.Len(t, api.updateInputs, 1)

	input := api.updateInputs[0]
	assert.Contains(t, *input.UpdateExpression, "#LastUpdate = :LastUpdate")

	stamp, isString := input.ExpressionAttributeValues[":LastUpdate"].(*types.AttributeValueMemberS)
	require.True(t, isString)
	// ISO-8601 at second precision: 2006-01-02T15:04:05
	assert.Len(t, stamp.Value, 19)
	assert.Equal(t, "T", stamp.Value[10:11])
}

func TestUpdateFields_FloatCoercionIsIdempotent(t *testing.T) {
	// Writing the same float twice must serialize to the same decimal
	// string both times, so repeated writes cannot drift.
	api := &fakeAPI{}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	for i := 0; i < 2; i++ {
		ok := client.UpdateFields(context.Background(), "Loan",
			Record{"LoanID": 12},
			map[string]interface{}{"Amount": 1234567.89, "Rate": 0.1},
			"")
		require.True(t, ok)
	}

	require.Len(t, api.updateInputs, 2)
	first := api.updateInputs[0].ExpressionAttributeValues[":Amount"].(*types.AttributeValueMemberN)
	second := api.updateInputs[1].ExpressionAttributeValues[":Amount"].(*types.AttributeValueMemberN)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, "1234567.89", first.Value)

	rate := api.updateInputs[0].ExpressionAttributeValues[":Rate"].(*types.AttributeValueMemberN)
	assert.Equal(t, "0.1", rate.Value)
}

func TestUpdateFields_IntegerCoercion(t *testing.T) {
	api := &fakeAPI{}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	ok := client.UpdateFields(context.Background(), "Loan",
		Record{"LoanID": 12},
		map[string]interface{}{"Retries": 3},
		"")

	require.True(t, ok)
	retries := api.updateInputs[0].ExpressionAttributeValues[":Retries"].(*types.AttributeValueMemberN)
	assert.Equal(t, "3", retries.Value)
}

func TestUpdateFields_StoreErrorReturnsFalse(t *testing.T) {
	api := &fakeAPI{updateErr: fmt.Errorf("conditional check failed")}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	ok := client.UpdateFields(context.Background(), "Loan",
		Record{"LoanID": 12},
		map[string]interface{}{"Status": "CLOSED"},
		"")

	assert.False(t, ok)
}
