package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"motor-picker/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()

	require.NoError(t, c.Ping(context.Background()))
}

func TestRedisClient_PingUnreachable(t *testing.T) {
	c := NewRedis(config.RedisConfig{Address: "127.0.0.1:1"})
	defer c.Close()

	assert.Error(t, c.Ping(context.Background()))
}

func TestElasticsearchClient_Ping(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	assert.NoError(t, c.Ping(context.Background()))

	status = http.StatusServiceUnavailable
	assert.Error(t, c.Ping(context.Background()))
}

func TestPostgresClient_ImplementsPinger(t *testing.T) {
	c, err := NewPostgres(config.PostgresConfig{Host: "localhost", Port: 5432, Database: "motors", User: "u", SSLMode: "disable"})
	require.NoError(t, err)
	defer c.Close()

	var _ Pinger = c
	var _ Pinger = &RedisClient{}
	var _ Pinger = &ElasticsearchClient{}
}
