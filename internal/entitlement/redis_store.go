package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/jobdocs/internal/model"
)

// recordKeyPrefix は権利レコードのストアキー接頭辞。
// バージョンタグを含む。正規化ポリシーを変更する場合はv2に上げて
// 旧キーと衝突しないようにする。
const recordKeyPrefix = "paid:v1:"

// OpenRedis はRedis接続クライアントを生成する。
// redisURLは接続URLを指定する（例: "redis://localhost:6379/0"）。
// 実際の接続確認にはclient.Ping()を使用すること。
func OpenRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// RedisStore はRedisを使用した権利レコードストア。
// 1レコード = 1キー（paid:v1:<sha256>）のJSON値。TTLは設定しない
// （使い切ってもcredits=0のまま保持し、未購入と区別する）。
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get は指定キーの権利レコードを取得する。キー不在の場合はnilを返す。
func (s *RedisStore) Get(ctx context.Context, hashedID string) (*model.EntitlementRecord, error) {
	val, err := s.client.Get(ctx, recordKeyPrefix+hashedID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("権利レコードの取得に失敗しました: %w", err)
	}

	record := &model.EntitlementRecord{}
	if err := json.Unmarshal([]byte(val), record); err != nil {
		return nil, fmt.Errorf("権利レコードの解析に失敗しました: %w", err)
	}

	return record, nil
}

// Set は権利レコードを全上書きで保存する。
func (s *RedisStore) Set(ctx context.Context, hashedID string, record *model.EntitlementRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("権利レコードのシリアライズに失敗しました: %w", err)
	}

	if err := s.client.Set(ctx, recordKeyPrefix+hashedID, data, 0).Err(); err != nil {
		return fmt.Errorf("権利レコードの保存に失敗しました: %w", err)
	}

	return nil
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
