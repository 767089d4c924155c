package store

import (
	"github.com/pkg/errors"
	r "gopkg.in/redis.v5"

	"github.com/guarzo/schooladmin/common"
)

const prefix = "_SCHOOLADMIN_"

var _ common.KeyValueStore = (*RedisStore)(nil)

// RedisStore shares the credential between processes on different hosts.
type RedisStore struct {
	client *r.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := r.ParseURL(url)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid redis URL")
	}
	return &RedisStore{client: r.NewClient(opts)}, nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	v, err := s.client.Get(prefix + key).Result()
	if err == r.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	return s.client.Set(prefix+key, value, 0).Err()
}

func (s *RedisStore) Remove(key string) error {
	return s.client.Del(prefix + key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
