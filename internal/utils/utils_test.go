package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "ana", "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt.Time, time.Minute)

	_, err = ParseJWT(token, "other-secret")
	assert.Error(t, err)

	_, err = GenerateJWT(1, "ana", "")
	assert.Error(t, err)
}

func TestJWTRejectsExpiredAndForeignAlg(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	s, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT(s, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1})
	s, err = hs512.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseJWT(s, "secret")
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, size         string
		wantPage, wantSize int
	}{
		{"", "", 1, DefaultPageSize},
		{"3", "10", 3, 10},
		{"0", "0", 1, DefaultPageSize},
		{"-2", "101", 1, DefaultPageSize},
		{"abc", "100", 1, 100},
	}
	for _, tt := range tests {
		page, size := ParsePagination(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page, "page %q", tt.page)
		assert.Equal(t, tt.wantSize, size, "size %q", tt.size)
	}

	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "wallet:user:7", WalletKey(7))
	assert.Equal(t, "txhistory:user:7:page:2:size:20", HistoryKey(7, 2, 20))
	assert.Equal(t, "txhistory:user:7:*", HistoryPattern(7))
}

func TestNilCacheIsEmpty(t *testing.T) {
	ctx := context.Background()
	var dest map[string]any

	found, err := GetCache(ctx, nil, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetCache(ctx, nil, "k", map[string]any{"a": 1}, CacheTTL))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
	assert.NoError(t, DeletePattern(ctx, nil, "k*"))
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)

	require.NoError(t, SetCache(ctx, rdb, WalletKey(3), map[string]any{"balance": 12.5}, CacheTTL))
	assert.Equal(t, CacheTTL, mr.TTL(WalletKey(3)))

	var dest map[string]any
	found, err := GetCache(ctx, rdb, WalletKey(3), &dest)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 12.5, dest["balance"])

	found, err = GetCache(ctx, rdb, WalletKey(4), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	mr.FastForward(CacheTTL + time.Second)
	found, err = GetCache(ctx, rdb, WalletKey(3), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeletePatternScansEveryPage(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)

	// more keys than one SCAN batch
	for page := 1; page <= 250; page++ {
		require.NoError(t, mr.Set(HistoryKey(7, page, 20), "{}"))
	}
	require.NoError(t, mr.Set(HistoryKey(8, 1, 20), "{}"))
	require.NoError(t, mr.Set(WalletKey(7), "{}"))
	require.NoError(t, mr.Set("admin:users:page=1:size=20", "{}"))

	require.NoError(t, DeletePattern(ctx, rdb, HistoryPattern(7)))
	assert.ElementsMatch(t, []string{HistoryKey(8, 1, 20), WalletKey(7), "admin:users:page=1:size=20"}, mr.Keys())

	require.NoError(t, DeletePattern(ctx, rdb, AdminUsersPattern))
	assert.False(t, mr.Exists("admin:users:page=1:size=20"))

	// nothing to match is not an error
	require.NoError(t, DeletePattern(ctx, rdb, HistoryPattern(99)))
}

func TestCacheReportsRedisErrors(t *testing.T) {
	ctx := context.Background()
	rdb, mr := newTestRedis(t)
	mr.Close()

	var dest map[string]any
	_, err := GetCache(ctx, rdb, "k", &dest)
	assert.Error(t, err)
	assert.Error(t, SetCache(ctx, rdb, "k", 1, CacheTTL))
	assert.Error(t, DeletePattern(ctx, rdb, "k*"))
}
