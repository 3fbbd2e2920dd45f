package db

import (
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/go-redis/redis"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
)

// Config contains the Redis connection settings for the preset store.
type Config struct {
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password    string `envconfig:"REDIS_PASSWORD"`
	DB          int    `envconfig:"REDIS_DB"`
	PoolSize    int    `envconfig:"REDIS_POOL_SIZE"`
	PoolTimeout int    `envconfig:"REDIS_POOL_TIMEOUT_SECONDS"`
	IdleTimeout int    `envconfig:"REDIS_IDLE_TIMEOUT_SECONDS"`
}

func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		addr = net.JoinHostPort(addr, "6379")
	}
	c := &Client{
		rc: redis.NewClient(&redis.Options{
			Addr:        addr,
			DB:          cfg.DB,
			Password:    cfg.Password,
			PoolSize:    cfg.PoolSize,
			PoolTimeout: time.Duration(cfg.PoolTimeout) * time.Second,
			IdleTimeout: time.Duration(cfg.IdleTimeout) * time.Second,
		}),
	}
	return c, nil
}

type Client struct {
	rc *redis.Client
}

func (c *Client) Get(key string, dst interface{}) error {
	val, err := c.rc.Get(key).Result()
	if err == redis.Nil {
		return ErrPresetNotFound
	} else if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dst)
}

func (c *Client) Put(key string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rc.Set(key, string(data), 0).Err()
}

func (c *Client) Delete(key string) error {
	n, err := c.rc.Del(key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPresetNotFound
	}
	return nil
}

// Ping checks that redis is reachable
func (c *Client) Ping() error {
	return c.rc.Ping().Err()
}
