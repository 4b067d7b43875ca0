package service

import (
	"context"
	"sort"
	"sync"
)

type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// LeaderboardService хранит лучший счет каждого пользователя
type LeaderboardService interface {
	Record(ctx context.Context, userID string, score int) error
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	// Position считается с 1; -1 если записи нет
	Position(ctx context.Context, userID string) (int, error)
}

// MemoryLeaderboardService - fallback вариант (данные теряются при рестарте)
type MemoryLeaderboardService struct {
	mu     sync.RWMutex
	scores map[string]int
}

func NewMemoryLeaderboardService() *MemoryLeaderboardService {
	return &MemoryLeaderboardService{
		scores: make(map[string]int),
	}
}

func (ms *MemoryLeaderboardService) Record(_ context.Context, userID string, score int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if current, ok := ms.scores[userID]; ok && current >= score {
		return nil
	}
	ms.scores[userID] = score
	return nil
}

func (ms *MemoryLeaderboardService) Top(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	return limitEntries(ms.sortedLocked(), limit), nil
}

func (ms *MemoryLeaderboardService) Position(_ context.Context, userID string) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for i, entry := range ms.sortedLocked() {
		if entry.UserID == userID {
			return i + 1, nil
		}
	}
	return -1, nil
}

func (ms *MemoryLeaderboardService) sortedLocked() []LeaderboardEntry {
	sorted := make([]LeaderboardEntry, 0, len(ms.scores))
	for userID, score := range ms.scores {
		sorted = append(sorted, LeaderboardEntry{UserID: userID, Score: score})
	}
	SortLeaderboard(sorted)
	return sorted
}

// SortLeaderboard сортирует по очкам, при равенстве по id пользователя
func SortLeaderboard(entries []LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].Score > entries[j].Score
	})
}

func limitEntries(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	return entries[:limit]
}
