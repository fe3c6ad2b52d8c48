// file: services/scoreboard_service.go
package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/cache"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
)

// 排行榜缓存的兜底过期时间：即使失效通知全部丢失，
// 榜单的陈旧程度也不会超过这个值
const scoreboardCacheTTL = 5 * time.Second

// ScoreboardService 维护排行榜的读路径和全量重建。
// 排行榜表本身由计分/提示事务逐队 upsert，这里负责排序、名次和缓存
type ScoreboardService struct {
	store  Store
	cache  cache.Store
	notify Notifier
}

func NewScoreboardService(store Store, c cache.Store, notify Notifier) *ScoreboardService {
	return &ScoreboardService{store: store, cache: c, notify: notify}
}

// GetScoreboard 读穿缓存：命中直接返回，未命中按
// 积分降序、最后解题时间升序（先到当前分数的队伍靠前）重算名次
func (s *ScoreboardService) GetScoreboard(limit int) ([]models.Scoreboard, error) {
	key := fmt.Sprintf("scoreboard:overall:%d", limit)
	if val, ok := s.cache.Get(key); ok {
		var cached []models.Scoreboard
		if json.Unmarshal([]byte(val), &cached) == nil {
			return cached, nil
		}
	}

	entries, err := s.store.ScoreboardEntries()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = uint(i + 1)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if data, err := json.Marshal(entries); err == nil {
		s.cache.Set(key, string(data), scoreboardCacheTTL)
	}
	return entries, nil
}

// Rebuild 从提交记录和提示购买重新聚合整个排行榜（管理员修复操作）：
// 净积分 = 解题得分之和 - 提示花费之和
func (s *ScoreboardService) Rebuild() error {
	aggs, err := s.store.AggregateTeamScores()
	if err != nil {
		return err
	}

	entries := make([]models.Scoreboard, 0, len(aggs))
	for i, agg := range aggs {
		members, err := s.store.TeamMembers(agg.TeamID)
		if err != nil {
			return err
		}
		entry := buildScoreboardEntry(&models.Team{
			ID:       agg.TeamID,
			TeamName: agg.TeamName,
			Points:   agg.Score,
		}, members, agg.LastSolveTime)
		entry.Rank = uint(i + 1)
		entries = append(entries, *entry)
	}

	if err := s.store.Tx(func(tx Store) error {
		return tx.ReplaceScoreboard(entries)
	}); err != nil {
		return err
	}

	s.cache.Invalidate(CacheScoreboardPattern)
	s.notify.Publish(ChangeFlags{Scoreboard: true})
	return nil
}

// RefreshTeam 在队伍人员变动后刷新该队的成员快照。
// 没有上榜记录的队伍（还没有解题）不需要投影
func (s *ScoreboardService) RefreshTeam(teamID uint32) {
	entry, err := s.store.ScoreboardEntryOf(teamID)
	if err != nil || entry == nil {
		if err != nil {
			log.Printf("scoreboard: failed to load entry for team %d: %v", teamID, err)
		}
		return
	}

	team, err := s.store.TeamByID(teamID)
	if err != nil {
		log.Printf("scoreboard: failed to load team %d: %v", teamID, err)
		return
	}
	members, err := s.store.TeamMembers(teamID)
	if err != nil {
		log.Printf("scoreboard: failed to load members of team %d: %v", teamID, err)
		return
	}

	fresh := buildScoreboardEntry(team, members, entry.LastSolveTime)
	if err := s.store.UpsertScoreboard(fresh); err != nil {
		log.Printf("scoreboard: failed to refresh team %d: %v", teamID, err)
		return
	}

	s.cache.Invalidate(CacheScoreboardPattern)
	s.notify.Publish(ChangeFlags{Scoreboard: true})
}
