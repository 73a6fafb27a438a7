// internal/common/dynamo/fake_api_test.go
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI scripts DynamoDB responses page by page and records every write.
type fakeAPI struct {
	pages     []queryPage
	queryCall int

	getItem map[string]types.AttributeValue
	getErr  error

	putInputs []*dynamodb.PutItemInput
	putErr    error

	updateInputs []*dynamodb.UpdateItemInput
	updateErr    error

	deleteInputs []*dynamodb.DeleteItemInput
	deleteErr    error
}

type queryPage struct {
	items   []map[string]types.AttributeValue
	lastKey map[string]types.AttributeValue
	err     error
}

func (f *fakeAPI) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.queryCall >= len(f.pages) {
		return nil, fmt.Errorf("unexpected query call %d", f.queryCall)
	}
	page := f.pages[f.queryCall]
	f.queryCall++
	if page.err != nil {
		return nil, page.err
	}
	return &dynamodb.QueryOutput{
		Items:            page.items,
		LastEvaluatedKey: page.lastKey,
	}, nil
}

func (f *fakeAPI) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInputs = append(f.putInputs, params)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateInputs = append(f.updateInputs, params)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeAPI) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.deleteInputs = append(f.deleteInputs, params)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func pageItems(ids ...int) []map[string]types.AttributeValue {
	items := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		items = append(items, map[string]types.AttributeValue{
			"LoanID": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", id)},
		})
	}
	return items
}

func continuation(id int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"LoanID": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", id)},
	}
}
