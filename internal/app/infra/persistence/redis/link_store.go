package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// linkKeyPrefix 订单映射键前缀
const linkKeyPrefix = "order-link:"

// linkTTL 映射缓存有效期
// 映射本身不可变，TTL 只为控制键空间规模
const linkTTL = 30 * 24 * time.Hour

// LinkStore 订单映射的次级本地存储（Redis）
// 主存储 MySQL 未命中或不可用时，解析器回退到这里
type LinkStore struct {
	rdb *redis.Client
}

// NewLinkStore 创建 Redis 映射存储，支持密码认证
func NewLinkStore(addr, password string, db int) (*LinkStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &LinkStore{rdb: rdb}, nil
}

// GetCommerceOrderID 按履约订单ID查映射；未找到返回 0, nil
func (s *LinkStore) GetCommerceOrderID(ctx context.Context, fulfillmentOrderID string) (int64, error) {
	val, err := s.rdb.Get(ctx, linkKeyPrefix+fulfillmentOrderID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt order link value %q: %w", val, err)
	}
	return id, nil
}

// Save 写入映射
func (s *LinkStore) Save(ctx context.Context, fulfillmentOrderID string, commerceOrderID int64) error {
	return s.rdb.Set(ctx, linkKeyPrefix+fulfillmentOrderID, strconv.FormatInt(commerceOrderID, 10), linkTTL).Err()
}

// Close 关闭连接
func (s *LinkStore) Close() error {
	return s.rdb.Close()
}
