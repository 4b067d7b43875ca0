package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/PoluyanbIch/GoQuizBot/internal/service"
)

// Leaderboard is a sorted set of best scores keyed by user id.
type Leaderboard struct {
	client *Client
}

func NewLeaderboard(client *Client) *Leaderboard {
	return &Leaderboard{client: client}
}

func (l *Leaderboard) Record(ctx context.Context, userID string, score int) error {
	_, err := withRetry(ctx, l.client, "zadd", func() (int64, error) {
		return l.client.rdb.ZAddGT(ctx, l.client.opts.LeaderboardKey, redis.Z{
			Score:  float64(score),
			Member: userID,
		}).Result()
	})
	return err
}

func (l *Leaderboard) Top(ctx context.Context, limit int) ([]service.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	members, err := withRetry(ctx, l.client, "zrevrange", func() ([]redis.Z, error) {
		return l.client.rdb.ZRevRangeWithScores(ctx, l.client.opts.LeaderboardKey, 0, stop).Result()
	})
	if err != nil {
		return nil, err
	}

	entries := make([]service.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		userID, ok := m.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected leaderboard member %T", m.Member)
		}
		entries = append(entries, service.LeaderboardEntry{UserID: userID, Score: int(m.Score)})
	}
	service.SortLeaderboard(entries)
	return entries, nil
}

func (l *Leaderboard) Position(ctx context.Context, userID string) (int, error) {
	rank, err := withRetry(ctx, l.client, "zrevrank", func() (int64, error) {
		return l.client.rdb.ZRevRank(ctx, l.client.opts.LeaderboardKey, userID).Result()
	})
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	return int(rank) + 1, nil
}
