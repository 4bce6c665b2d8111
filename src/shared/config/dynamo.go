package config

type Dynamo interface {
	DynamoConfig()
	JobTable() string
}

var _ Dynamo = ProdDynamo{}

type ProdDynamo struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	TableName       string
}

func (p ProdDynamo) DynamoConfig() {}

func (p ProdDynamo) JobTable() string {
	return p.TableName
}

var _ Dynamo = LocalDynamo{}

type LocalDynamo struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Host            string
	TableName       string
}

func (l LocalDynamo) DynamoConfig() {}

func (l LocalDynamo) JobTable() string {
	return l.TableName
}
