package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"channel-admin-backend/internal/platform/redis"
)

// CacheService кэширует данные каналов и администраторов в Redis.
// Не путать с кэшем Gateway: тот живет в памяти процесса и хранит
// только сырые ответы Telegram API
type CacheService struct {
	redisClient *redis.Client
}

func NewCacheService(redisClient *redis.Client) *CacheService {
	return &CacheService{
		redisClient: redisClient,
	}
}

// Get получает значение из кэша
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// Set сохраняет значение в кэш
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redisClient.Set(ctx, key, string(data), ttl).Err()
}

// Delete удаляет значение из кэша
func (c *CacheService) Delete(ctx context.Context, key string) error {
	return c.redisClient.Del(ctx, key).Err()
}

// DeletePattern удаляет все ключи по паттерну
func (c *CacheService) DeletePattern(ctx context.Context, pattern string) error {
	keys, err := c.redisClient.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return c.redisClient.Del(ctx, keys...).Err()
	}

	return nil
}

// GetOrSet получает значение из кэша или устанавливает новое
func (c *CacheService) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, setter func() (interface{}, error)) error {
	// Пытаемся получить из кэша
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	// Если не найдено, вызываем setter
	value, err := setter()
	if err != nil {
		return err
	}

	// Сохраняем в кэш
	err = c.Set(ctx, key, value, ttl)
	if err != nil {
		return err
	}

	// Копируем значение в dest
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// InvalidateChannelCache инвалидирует кэш канала
func (c *CacheService) InvalidateChannelCache(ctx context.Context, channelID string) error {
	patterns := []string{
		fmt.Sprintf("channel:%s", channelID),
		fmt.Sprintf("channel_admins:%s:*", channelID),
		"channels:list",
	}

	for _, pattern := range patterns {
		if err := c.DeletePattern(ctx, pattern); err != nil {
			return fmt.Errorf("failed to delete pattern %s: %w", pattern, err)
		}
	}

	return nil
}

// InvalidateTemplatesCache инвалидирует кэш шаблонов разрешений
func (c *CacheService) InvalidateTemplatesCache(ctx context.Context) error {
	return c.DeletePattern(ctx, "permission_templates")
}
