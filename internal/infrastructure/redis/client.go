package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/redis/go-redis/v9"
)

var ErrKeyNotFound = stderrors.New("key not found")

// The options catalog changes rarely, so a short TTL keeps the cache honest
// even if an invalidation is missed.
const optionsTTL = time.Hour

const optionsKey = "investment-options"

// RedisClient is the cache surface the ledger needs: the current access token
// per user, a deny list for refresh tokens revoked before they expire, and
// the investment options catalog.
type RedisClient interface {
	StoreAccessToken(ctx context.Context, userID int64, token string, ttl time.Duration) error
	AccessToken(ctx context.Context, userID int64) (string, error)
	RevokeAccessToken(ctx context.Context, userID int64) error
	DenyRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRefreshTokenDenied(ctx context.Context, tokenID string) (bool, error)
	CachedOptions(ctx context.Context) (string, error)
	StoreOptions(ctx context.Context, payload string) error
	InvalidateOptions(ctx context.Context) error
	Close() error
}

// Client is the implementation of RedisClient.
type Client struct {
	client *redis.Client
}

func NewClient(addr string) *Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		slog.Error("failed to connect to Redis", "addr", addr, "error", err)
		panic(err)
	}

	slog.Info("connected to Redis", "addr", addr)
	return &Client{client: client}
}

func accessTokenKey(userID int64) string {
	return fmt.Sprintf("user:%d:token", userID)
}

func refreshDenyKey(tokenID string) string {
	return fmt.Sprintf("refresh:%s:denied", tokenID)
}

func (c *Client) get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// StoreAccessToken makes token the single live session token for the user.
// Any previously cached token stops passing the middleware check.
func (c *Client) StoreAccessToken(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	return c.client.Set(ctx, accessTokenKey(userID), token, ttl).Err()
}

func (c *Client) AccessToken(ctx context.Context, userID int64) (string, error) {
	return c.get(ctx, accessTokenKey(userID))
}

func (c *Client) RevokeAccessToken(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, accessTokenKey(userID)).Err()
}

// DenyRefreshToken keeps the token id on the deny list only for as long as
// the token itself could still be presented.
func (c *Client) DenyRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, refreshDenyKey(tokenID), "1", ttl).Err()
}

func (c *Client) IsRefreshTokenDenied(ctx context.Context, tokenID string) (bool, error) {
	_, err := c.get(ctx, refreshDenyKey(tokenID))
	if stderrors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) CachedOptions(ctx context.Context) (string, error) {
	return c.get(ctx, optionsKey)
}

func (c *Client) StoreOptions(ctx context.Context, payload string) error {
	return c.client.Set(ctx, optionsKey, payload, optionsTTL).Err()
}

func (c *Client) InvalidateOptions(ctx context.Context) error {
	return c.client.Del(ctx, optionsKey).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
