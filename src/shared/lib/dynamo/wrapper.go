package dynamolib

import (
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/guregu/dynamo"
)

// empty args maps and empty strings are kept as they are instead of being
// dropped or turned into NULL
var encoder = dynamodbattribute.NewEncoder(func(e *dynamodbattribute.Encoder) {
	e.MarshalOptions.EnableEmptyCollections = true
	e.NullEmptyString = false
	e.NullEmptyByteSlice = false
})

var _ dynamo.Marshaler = item{}

type item map[string]any

func (i item) MarshalDynamo() (*dynamodb.AttributeValue, error) {
	var fields map[string]any = i
	return encoder.Encode(fields)
}

func NewDynamoDBWrapper(db *dynamo.DB) DynamoDBWrapper {
	return DynamoDBWrapper{DB: db}
}

type DynamoDBWrapper struct {
	*dynamo.DB
}

type TableWrapper struct {
	dynamo.Table
}

func (d DynamoDBWrapper) Table(tableName string) TableWrapper {
	return TableWrapper{
		Table: d.DB.Table(tableName),
	}
}

func (t TableWrapper) Put(input map[string]any) *dynamo.Put {
	return t.Table.Put(item(input))
}

// PutIfUnchanged replaces the item only while field still holds expected.
func (t TableWrapper) PutIfUnchanged(input map[string]any, field string, expected any) *dynamo.Put {
	return t.Put(input).If("$ = ?", field, expected)
}
