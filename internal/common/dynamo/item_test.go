// internal/common/dynamo/item_test.go
package dynamo

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-backend/internal/common/logger"
)

func TestGetRow_AbsentRowIsNotAnError(t *testing.T) {
	api := &fakeAPI{}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	var dst Record
	found, err := client.GetRow(context.Background(), "lending-loan-offers",
		Record{"clientId": "210045"}, &dst)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetRow_DecodesItem(t *testing.T) {
	api := &fakeAPI{
		getItem: map[string]types.AttributeValue{
			"clientId":          &types.AttributeValueMemberS{Value: "210045"},
			"StatusPreapproved": &types.AttributeValueMemberN{Value: "2"},
		},
	}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	var dst Record
	found, err := client.GetRow(context.Background(), "lending-loan-offers",
		Record{"clientId": "210045"}, &dst)

	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "210045", dst["clientId"])
	assert.Equal(t, float64(2), dst["StatusPreapproved"])
}

func TestPutRow_ReportsFailureAsFalse(t *testing.T) {
	api := &fakeAPI{putErr: fmt.Errorf("table missing")}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	ok := client.PutRow(context.Background(), "UpdatedCustomerAccounts",
		Record{"Id": "a-1"})

	assert.False(t, ok)
}

func TestDeleteRow(t *testing.T) {
	api := &fakeAPI{}
	client := NewWithAPI(api, logger.NewNoOpLogger())

	ok := client.DeleteRow(context.Background(), "ClientSMS", Record{"SMSID": "s-1"})

	require.True(t, ok)
	require.Len(t, api.deleteInputs, 1)
	assert.Equal(t, "ClientSMS", *api.deleteInputs[0].TableName)
}
