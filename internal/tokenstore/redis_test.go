package tokenstore

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Load_MissingKeyIsNotAnError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	store := NewRedisStore(db)

	mock.ExpectGet(TokenKey).RedisNil()

	token, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	store := NewRedisStore(db)

	mock.ExpectSet(TokenKey, "jwt-abc", 0).SetVal("OK")
	mock.ExpectGet(TokenKey).SetVal("jwt-abc")

	require.NoError(t, store.Save(context.Background(), "jwt-abc"))

	token, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	store := NewRedisStore(db)

	mock.ExpectDel(TokenKey).SetVal(1)

	require.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisOptions_PasswordAndDBApplied(t *testing.T) {
	opts := redisOptions("localhost:6379", "secret", 2)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	// Credentials inside the URL win over the config fields.
	opts = redisOptions("redis://:urlpass@localhost:6379/5", "secret", 2)
	assert.Equal(t, "urlpass", opts.Password)
	assert.Equal(t, 5, opts.DB)
}

func TestRedisStore_Load_ConnectionErrorSurfaces(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	store := NewRedisStore(db)

	mock.ExpectGet(TokenKey).SetErr(redis.ErrClosed)

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}
