package infra_redis_code_set

import (
	"context"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/kinoswap/matchroom/internal/model"
)

// Driver keeps live room codes in a redis set shared by every instance.
type Driver struct {
	client *redis.Client
	key    string
}

func New(
	client *redis.Client,
	key string,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
	}
}

// Reserve reports false when another instance already holds code.
func (d *Driver) Reserve(ctx context.Context, code model.RoomCode) (bool, error) {
	if code == model.EmptyRoomCode {
		return false, nil
	}

	added, err := d.client.SAdd(d.key, string(code)).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (d *Driver) Release(ctx context.Context, code model.RoomCode) error {
	if code == model.EmptyRoomCode {
		return nil
	}

	if err := d.client.SRem(d.key, string(code)).Err(); err != nil {
		return err
	}
	return nil
}
