package config

import "google.golang.org/api/option"

// CloudStorage describes how to reach the bucket host behind gs:// paths.
type CloudStorage interface {
	ClientOptions() []option.ClientOption
}

var _ CloudStorage = ProdCloudStorage{}

type ProdCloudStorage struct {
	SecretKey string
}

func (p ProdCloudStorage) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsJSON([]byte(p.SecretKey)),
	}
}

var _ CloudStorage = LocalCloudStorage{}

type LocalCloudStorage struct {
	HostEndpoint string
}

func (l LocalCloudStorage) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(l.HostEndpoint),
		option.WithAPIKey("fake_api_key"),
	}
}
