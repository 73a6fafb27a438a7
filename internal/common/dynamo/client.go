// internal/common/dynamo/client.go
package dynamo

import (
	"context"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"lending-backend/internal/common/config"
	"lending-backend/internal/common/logger"
)

// Record is a raw store row. The tables this core reads are schemaless
// beyond their key attributes, so rows travel as maps and callers decode
// the attributes they need.
type Record = map[string]interface{}

// API is the subset of the DynamoDB client used by the lending core.
type API interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Client wraps the DynamoDB API with the query/update primitives the
// lending core is built on.
type Client struct {
	api    API
	logger logger.Logger
}

// New creates a Client against the configured region. An endpoint override
// in the config points the client at a local stack.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Client, error) {
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, err
	}

	var optFns []func(*dynamodb.Options)
	if cfg.AWS.Endpoint != "" {
		endpoint := cfg.AWS.Endpoint
		optFns = append(optFns, func(o *dynamodb.Options) {
			o.BaseEndpoint = &endpoint
		})
	}

	return &Client{
		api:    dynamodb.NewFromConfig(awsCfg, optFns...),
		logger: log.WithFields(map[string]interface{}{"component": "dynamo"}),
	}, nil
}

// NewWithAPI wires an explicit API implementation, used by tests.
func NewWithAPI(api API, log logger.Logger) *Client {
	return &Client{
		api:    api,
		logger: log.WithFields(map[string]interface{}{"component": "dynamo"}),
	}
}
