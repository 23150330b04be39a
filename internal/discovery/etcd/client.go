// Package etcd 服务实例注册：租约 + keepalive，租约丢失后自动重新注册。
package etcd

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

type Config struct {
	Endpoints []string
	TTL       int
}

type Client struct {
	*clientv3.Client
	ttl int64
}

func New(cfg Config) (*Client, error) {
	cli, err := clientv3.New(clientv3.Config{Endpoints: cfg.Endpoints, DialTimeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	ttl := int64(cfg.TTL)
	if ttl <= 0 {
		ttl = 10
	}
	return &Client{Client: cli, ttl: ttl}, nil
}

// Registration 一次注册的句柄
type Registration struct {
	Key   string
	lease atomic.Int64
}

// LeaseID 当前租约，重新注册后会变化
func (r *Registration) LeaseID() clientv3.LeaseID { return clientv3.LeaseID(r.lease.Load()) }

func (c *Client) register(ctx context.Context, key, val string) (clientv3.LeaseID, <-chan *clientv3.LeaseKeepAliveResponse, error) {
	lease, err := c.Client.Grant(ctx, c.ttl)
	if err != nil {
		return 0, nil, fmt.Errorf("grant lease: %w", err)
	}
	if _, err := c.Client.Put(ctx, key, val, clientv3.WithLease(lease.ID)); err != nil {
		return 0, nil, fmt.Errorf("put %s: %w", key, err)
	}
	ch, err := c.Client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return 0, nil, fmt.Errorf("keepalive: %w", err)
	}
	return lease.ID, ch, nil
}

// Register 指数退避重试 attempts 次；成功后后台维持租约，
// keepalive 通道关闭（租约过期、etcd 重启）时用同样的 key/val 重新注册，直到 ctx 取消。
func (c *Client) Register(ctx context.Context, key, val string, attempts int, lg *zap.Logger) (*Registration, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	leaseID, ch, err := c.registerRetry(ctx, key, val, attempts, lg)
	if err != nil {
		return nil, err
	}
	reg := &Registration{Key: key}
	reg.lease.Store(int64(leaseID))
	go func() {
		for {
			for range ch {
			}
			if ctx.Err() != nil {
				return
			}
			lg.Warn("etcd_lease_lost", zap.String("key", key))
			id, next, err := c.registerRetry(ctx, key, val, attempts, lg)
			if err != nil {
				lg.Error("etcd_reregister_failed", zap.String("key", key), zap.Error(err))
				return
			}
			reg.lease.Store(int64(id))
			ch = next
			lg.Info("etcd_reregistered", zap.String("key", key))
		}
	}()
	return reg, nil
}

func (c *Client) registerRetry(ctx context.Context, key, val string, attempts int, lg *zap.Logger) (clientv3.LeaseID, <-chan *clientv3.LeaseKeepAliveResponse, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		var id clientv3.LeaseID
		var ch <-chan *clientv3.LeaseKeepAliveResponse
		if id, ch, err = c.register(ctx, key, val); err == nil {
			return id, ch, nil
		}
		if i == attempts {
			break
		}
		backoff := time.Duration(1<<i) * 100 * time.Millisecond
		lg.Warn("etcd_register_retry", zap.Int("attempt", i), zap.Duration("backoff", backoff), zap.Error(err))
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return 0, nil, err
}

// Deregister 删除 key 并撤销租约；key 可能已过期，错误忽略
func (c *Client) Deregister(ctx context.Context, reg *Registration) {
	if reg == nil {
		return
	}
	_, _ = c.Client.Delete(ctx, reg.Key)
	if id := reg.LeaseID(); id > 0 {
		_, _ = c.Client.Revoke(ctx, id)
	}
}

func (c *Client) Close() error { return c.Client.Close() }
