// file: services/scoring_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/cache"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"gorm.io/gorm"
)

// 缓存键约定：题目列表单键，排行榜按查询参数分键、按前缀整体失效
const (
	CacheKeyChallengeList  = "challenges:list"
	CacheScoreboardPattern = "scoreboard:*"
)

// ScoringService 负责校验并恰好记账一次 Flag 提交：
// 防重指纹、用户/队伍加分、排行榜 upsert、动态分值衰减
// 都发生在同一个数据库事务里
type ScoringService struct {
	store  Store
	cfg    ConfigProvider
	cache  cache.Store
	notify Notifier
	now    func() time.Time
}

func NewScoringService(store Store, cfg ConfigProvider, c cache.Store, notify Notifier) *ScoringService {
	return &ScoringService{store: store, cfg: cfg, cache: c, notify: notify, now: time.Now}
}

// SubmitFlag 处理一次提交，成功时返回本次获得的分数。
// 校验顺序：队伍解析 → 比赛状态 → 限流 → 重复判定 → 题目加载 → Flag 比对，
// 之后的全部写入在一个事务内完成
func (s *ScoringService) SubmitFlag(userID, challengeID uint32, candidateFlag, ip string) (uint, error) {
	teamID, err := s.store.TeamIDOf(userID)
	if err != nil {
		return 0, err
	}

	cfg, err := s.cfg.Get()
	if err != nil {
		return 0, err
	}
	if cfg.EventState != models.EventRunning {
		return 0, ErrEventNotActive
	}

	now := s.now()

	// 滑动窗口限流：错误提交同样计数，防止爆破。
	// MaxAttempts 非正值视为限流关闭，配置行被直接改坏时不至于拦下全部提交
	if cfg.MaxAttempts > 0 {
		window := time.Duration(cfg.WindowSeconds) * time.Second
		attempts, err := s.store.AttemptTimesSince(userID, now.Add(-window))
		if err != nil {
			return 0, err
		}
		if len(attempts) >= cfg.MaxAttempts {
			return 0, &RateLimitedError{RetryAfter: retryAfter(attempts, now, cfg)}
		}
	}

	// 先查已解出，重复提交不算失败也不进事务
	solved, err := s.hasSolve(challengeID, teamID, userID)
	if err != nil {
		return 0, err
	}
	if solved {
		s.logAttempt(challengeID, teamID, userID, candidateFlag, models.FlagResultDuplicate, ip, now)
		return 0, ErrAlreadySolved
	}

	challenge, err := s.store.ChallengeByID(challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if challenge.State != models.ChallengeStateVisible {
		return 0, ErrNotFound
	}

	// 只去首尾空白，不做任何其他归一化，大小写敏感精确比对
	if strings.TrimSpace(candidateFlag) != challenge.Flag {
		s.logAttempt(challengeID, teamID, userID, candidateFlag, models.FlagResultWrong, ip, now)
		return 0, ErrIncorrectFlag
	}

	var awarded uint
	err = s.store.Tx(func(tx Store) error {
		// 对题目行加锁，衰减计算依赖串行化的 solved_count
		ch, err := tx.ChallengeForUpdate(challengeID)
		if err != nil {
			return err
		}
		awarded = ch.CurrentScore

		// 指纹插入是唯一的串行化点：并发双提时输家在这里拿到
		// gorm.ErrDuplicatedKey，整个事务回滚，不产生双倍加分
		sub := &models.Submission{
			ChallengeID: challengeID,
			UserID:      userID,
			TeamID:      teamID,
			Score:       awarded,
			SolvingTime: now,
		}
		if err := tx.CreateSubmission(sub); err != nil {
			return err
		}

		if err := tx.AddUserPoints(userID, awarded); err != nil {
			return err
		}

		// 解题计数与衰减只跟随队伍解题：无队伍选手的练习提交
		// 计入个人积分，但不改变题目的公开计数和当前分值
		if teamID == nil {
			return nil
		}

		team, err := tx.TeamForUpdate(*teamID)
		if err != nil {
			return err
		}
		team.Points += awarded
		if err := tx.SaveTeam(team); err != nil {
			return err
		}

		members, err := tx.TeamMembers(*teamID)
		if err != nil {
			return err
		}
		entry := buildScoreboardEntry(team, members, &now)
		if err := tx.UpsertScoreboard(entry); err != nil {
			return err
		}

		ch.SolvedCount++
		if cfg.DynamicScoring {
			ch.CurrentScore = DecayedScore(ch.InitialScore, ch.MinScore, ch.DecayRatio, ch.SolvedCount)
		}
		return tx.SaveChallenge(ch)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发提交输掉了插入竞争，等价于已解出
			s.logAttempt(challengeID, teamID, userID, candidateFlag, models.FlagResultDuplicate, ip, now)
			return 0, ErrAlreadySolved
		}
		return 0, err
	}

	s.logAttempt(challengeID, teamID, userID, candidateFlag, models.FlagResultCorrect, ip, now)
	s.afterSolve(challenge, teamID, awarded, now)
	return awarded, nil
}

func (s *ScoringService) hasSolve(challengeID uint32, teamID *uint32, userID uint32) (bool, error) {
	if teamID != nil {
		return s.store.HasTeamSolve(challengeID, *teamID)
	}
	return s.store.HasUserSolve(challengeID, userID)
}

// logAttempt 写提交尝试日志。日志同时是限流计数来源，
// 写入失败只会让限流短计，不能影响提交结果
func (s *ScoringService) logAttempt(challengeID uint32, teamID *uint32, userID uint32, flag string, result models.FlagResult, ip string, at time.Time) {
	entry := &models.SubmissionLog{
		ChallengeID:    challengeID,
		TeamID:         teamID,
		UserID:         userID,
		SubmittedFlag:  flag,
		FlagResult:     result,
		SubmissionTime: at,
		IPAddress:      ip,
	}
	if err := s.store.LogAttempt(entry); err != nil {
		log.Printf("scoring: failed to log attempt for user %d: %v", userID, err)
	}
}

// afterSolve 事务提交后的尽力而为收尾：解题动态、缓存失效、变更广播。
// 这里的失败只记日志，积分已经落库，陈旧缓存顶多带来可见的延迟
func (s *ScoringService) afterSolve(challenge *models.Challenge, teamID *uint32, awarded uint, at time.Time) {
	if teamID != nil {
		if team, err := s.store.TeamByID(*teamID); err == nil {
			feed := &models.SolveFeed{
				ChallengeID:   challenge.ID,
				ChallengeName: challenge.ChallengeName,
				TeamID:        team.ID,
				TeamName:      team.TeamName,
				Score:         awarded,
				SolvingTime:   at,
			}
			if err := s.store.AppendSolveFeed(feed); err != nil {
				log.Printf("scoring: failed to append solve feed: %v", err)
			}
		} else {
			log.Printf("scoring: failed to load team %d for solve feed: %v", *teamID, err)
		}
	}

	s.cache.Invalidate(CacheKeyChallengeList)
	s.cache.Invalidate(CacheScoreboardPattern)
	s.notify.Publish(ChangeFlags{Challenges: true, Scoreboard: true})
}

// retryAfter 计算限流剩余等待秒数：窗口内最早一次尝试滑出窗口所需时间，
// 再叠加距最近一次尝试的冷却期下限，至少 1 秒
func retryAfter(attempts []time.Time, now time.Time, cfg models.EventConfig) int {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	earliest := attempts[0]
	latest := attempts[len(attempts)-1]

	retry := int(math.Ceil(earliest.Add(window).Sub(now).Seconds()))
	cooldown := int(math.Ceil((time.Duration(cfg.CooldownSeconds)*time.Second - now.Sub(latest)).Seconds()))
	if cooldown > retry {
		retry = cooldown
	}
	if retry < 1 {
		retry = 1
	}
	return retry
}

// DecayedScore 计算动态计分下的当前分值：解题次数的确定性函数，
// 每次解出衰减 round(initial*ratio)（至少 1 分），不低于下限 min
func DecayedScore(initial, min uint, ratio float32, solvedCount uint) uint {
	if min > initial {
		min = initial
	}
	if ratio <= 0 {
		return initial
	}
	step := uint(math.Round(float64(initial) * float64(ratio)))
	if step == 0 {
		step = 1
	}
	total := step * solvedCount
	if total >= initial-min {
		return min
	}
	return initial - total
}

// buildScoreboardEntry 生成队伍的排行榜投影，含成员快照
func buildScoreboardEntry(team *models.Team, members []models.User, lastSolve *time.Time) *models.Scoreboard {
	snapshot := make([]models.ScoreboardMember, 0, len(members))
	for _, m := range members {
		snapshot = append(snapshot, models.ScoreboardMember{
			UserID:   m.ID,
			Username: m.Username,
			Points:   m.Points,
		})
	}
	data, _ := json.Marshal(snapshot)

	return &models.Scoreboard{
		TeamID:        team.ID,
		TeamName:      team.TeamName,
		Score:         team.Points,
		LastSolveTime: lastSolve,
		Members:       string(data),
	}
}
