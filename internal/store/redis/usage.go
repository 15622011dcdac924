package redis

import (
	"context"
	"fmt"
	"strconv"
)

// RecordClick counts one outbound redirect to ventureID attributed to ref.
func (s *Store) RecordClick(ctx context.Context, ventureID, ref string) error {
	if err := s.client.HIncrBy(ctx, ClicksKey(ventureID), ref, 1).Err(); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

// GetClickStats returns click counts per referral token for each venture.
func (s *Store) GetClickStats(ctx context.Context, ventureIDs []string) (map[string]map[string]int64, error) {
	stats := make(map[string]map[string]int64, len(ventureIDs))

	for _, id := range ventureIDs {
		raw, err := s.client.HGetAll(ctx, ClicksKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get clicks for %s: %w", id, err)
		}
		if len(raw) == 0 {
			continue
		}

		counts := make(map[string]int64, len(raw))
		for ref, v := range raw {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			counts[ref] = n
		}
		stats[id] = counts
	}

	return stats, nil
}
