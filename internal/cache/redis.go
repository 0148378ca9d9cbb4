package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient reste accessible aux middlewares (rate limiting).
var RedisClient *redis.Client

// InitRedis initialise la connexion Redis et retourne le Store correspondant.
func InitRedis() (Store, error) {
	redisHost := os.Getenv("REDIS_HOST")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	if redisHost == "" {
		log.Println("⚠️ REDIS_HOST non configuré — cache mémoire utilisé")
		return nil, fmt.Errorf("REDIS_HOST non configuré")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         redisHost,
		Password:     redisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Println("⚠️ Impossible de se connecter à Redis :", err)
		return nil, fmt.Errorf("impossible de se connecter à Redis: %v", err)
	}

	RedisClient = client
	log.Println("✅ Redis connecté avec succès")
	return &redisStore{client: client}, nil
}

type redisStore struct {
	client *redis.Client
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("⚠️ Erreur écriture cache %s: %v", key, err)
	}
}

func (s *redisStore) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Erreur invalidation cache %v: %v", keys, err)
	}
}
