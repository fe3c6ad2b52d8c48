// file: services/scoring_service_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func runningConfig() models.EventConfig {
	return models.EventConfig{
		ID:              1,
		EventState:      models.EventRunning,
		DynamicScoring:  true,
		MaxAttempts:     10,
		WindowSeconds:   60,
		CooldownSeconds: 10,
	}
}

func newScoringService(st *fakeStore, cfg models.EventConfig, c *fakeCache, n *fakeNotifier) *ScoringService {
	return &ScoringService{
		store:  st,
		cfg:    fixedConfig{cfg: cfg},
		cache:  c,
		notify: n,
		now:    func() time.Time { return testNow },
	}
}

func TestSubmitFlagCorrect(t *testing.T) {
	challenge := models.Challenge{
		ID:            7,
		ChallengeName: "baby-pwn",
		State:         models.ChallengeStateVisible,
		Flag:          "flag{s3cr3t}",
		InitialScore:  500,
		MinScore:      100,
		CurrentScore:  450,
		DecayRatio:    0.1,
		SolvedCount:   1,
	}
	team := models.Team{ID: 3, TeamName: "team-a", Points: 120}

	var (
		createdSub   *models.Submission
		savedTeam    *models.Team
		savedCh      *models.Challenge
		upserted     *models.Scoreboard
		feed         *models.SolveFeed
		logs         []models.SubmissionLog
		userPointsTo uint32
		pointsDelta  uint
	)
	st := &fakeStore{
		TeamIDOfFunc: func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) {
			ch := challenge
			return &ch, nil
		},
		ChallengeForUpdateFunc: func(id uint32) (*models.Challenge, error) {
			ch := challenge
			return &ch, nil
		},
		TeamForUpdateFunc: func(id uint32) (*models.Team, error) {
			tm := team
			return &tm, nil
		},
		TeamByIDFunc: func(id uint32) (*models.Team, error) {
			tm := team
			return &tm, nil
		},
		TeamMembersFunc: func(teamID uint32) ([]models.User, error) {
			return []models.User{{ID: 42, Username: "alice", Points: 450}}, nil
		},
		CreateSubmissionFunc: func(sub *models.Submission) error { createdSub = sub; return nil },
		AddUserPointsFunc: func(userID uint32, delta uint) error {
			userPointsTo, pointsDelta = userID, delta
			return nil
		},
		SaveTeamFunc:         func(tm *models.Team) error { savedTeam = tm; return nil },
		SaveChallengeFunc:    func(ch *models.Challenge) error { savedCh = ch; return nil },
		UpsertScoreboardFunc: func(entry *models.Scoreboard) error { upserted = entry; return nil },
		AppendSolveFeedFunc:  func(e *models.SolveFeed) error { feed = e; return nil },
		LogAttemptFunc:       func(e *models.SubmissionLog) error { logs = append(logs, *e); return nil },
	}
	c := &fakeCache{}
	n := &fakeNotifier{}
	svc := newScoringService(st, runningConfig(), c, n)

	// 首尾空白会被去掉，其余精确比对
	awarded, err := svc.SubmitFlag(42, 7, "  flag{s3cr3t}\n", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, uint(450), awarded)

	require.NotNil(t, createdSub)
	assert.Equal(t, uint32(7), createdSub.ChallengeID)
	assert.Equal(t, uint32(42), createdSub.UserID)
	require.NotNil(t, createdSub.TeamID)
	assert.Equal(t, uint32(3), *createdSub.TeamID)
	assert.Equal(t, uint(450), createdSub.Score)

	assert.Equal(t, uint32(42), userPointsTo)
	assert.Equal(t, uint(450), pointsDelta)

	require.NotNil(t, savedTeam)
	assert.Equal(t, uint(570), savedTeam.Points)

	require.NotNil(t, upserted)
	assert.Equal(t, uint32(3), upserted.TeamID)
	assert.Equal(t, uint(570), upserted.Score)
	require.NotNil(t, upserted.LastSolveTime)
	assert.Equal(t, testNow, *upserted.LastSolveTime)
	assert.Contains(t, upserted.Members, "alice")

	// 解题计数 +1，动态分值按新计数衰减
	require.NotNil(t, savedCh)
	assert.Equal(t, uint(2), savedCh.SolvedCount)
	assert.Equal(t, uint(400), savedCh.CurrentScore)

	require.NotNil(t, feed)
	assert.Equal(t, "baby-pwn", feed.ChallengeName)
	assert.Equal(t, "team-a", feed.TeamName)
	assert.Equal(t, uint(450), feed.Score)

	require.Len(t, logs, 1)
	assert.Equal(t, models.FlagResultCorrect, logs[0].FlagResult)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)

	assert.Contains(t, c.invalidated, CacheKeyChallengeList)
	assert.Contains(t, c.invalidated, CacheScoreboardPattern)
	require.Len(t, n.published, 1)
	assert.Equal(t, ChangeFlags{Challenges: true, Scoreboard: true}, n.published[0])
}

func TestSubmitFlagWrong(t *testing.T) {
	var logs []models.SubmissionLog
	txCalled := false
	st := &fakeStore{
		TeamIDOfFunc: func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{right}"}, nil
		},
		TxFunc:         func(fn func(tx Store) error) error { txCalled = true; return nil },
		LogAttemptFunc: func(e *models.SubmissionLog) error { logs = append(logs, *e); return nil },
	}
	n := &fakeNotifier{}
	svc := newScoringService(st, runningConfig(), &fakeCache{}, n)

	awarded, err := svc.SubmitFlag(42, 7, "flag{wrong}", "10.0.0.1")
	assert.ErrorIs(t, err, ErrIncorrectFlag)
	assert.Zero(t, awarded)
	assert.False(t, txCalled, "错误提交不应进入事务")
	require.Len(t, logs, 1)
	assert.Equal(t, models.FlagResultWrong, logs[0].FlagResult)
	assert.Empty(t, n.published)
}

func TestSubmitFlagAlreadySolved(t *testing.T) {
	var logs []models.SubmissionLog
	st := &fakeStore{
		TeamIDOfFunc:     func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		HasTeamSolveFunc: func(challengeID, teamID uint32) (bool, error) { return true, nil },
		LogAttemptFunc:   func(e *models.SubmissionLog) error { logs = append(logs, *e); return nil },
	}
	svc := newScoringService(st, runningConfig(), &fakeCache{}, &fakeNotifier{})

	awarded, err := svc.SubmitFlag(42, 7, "flag{s3cr3t}", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAlreadySolved)
	assert.Zero(t, awarded)
	require.Len(t, logs, 1)
	assert.Equal(t, models.FlagResultDuplicate, logs[0].FlagResult)
}

// 并发双提：输家的指纹插入在事务内冲突，整体回滚并等价于已解出
func TestSubmitFlagDuplicateKeyRace(t *testing.T) {
	var logs []models.SubmissionLog
	st := &fakeStore{
		TeamIDOfFunc: func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{s3cr3t}", CurrentScore: 300}, nil
		},
		CreateSubmissionFunc: func(sub *models.Submission) error { return gorm.ErrDuplicatedKey },
		LogAttemptFunc:       func(e *models.SubmissionLog) error { logs = append(logs, *e); return nil },
	}
	c := &fakeCache{}
	n := &fakeNotifier{}
	svc := newScoringService(st, runningConfig(), c, n)

	awarded, err := svc.SubmitFlag(42, 7, "flag{s3cr3t}", "10.0.0.1")
	assert.ErrorIs(t, err, ErrAlreadySolved)
	assert.Zero(t, awarded)
	require.Len(t, logs, 1)
	assert.Equal(t, models.FlagResultDuplicate, logs[0].FlagResult)
	assert.Empty(t, c.invalidated)
	assert.Empty(t, n.published)
}

func TestSubmitFlagEventNotActive(t *testing.T) {
	for _, state := range []models.EventState{models.EventPaused, models.EventStopped} {
		cfg := runningConfig()
		cfg.EventState = state
		svc := newScoringService(&fakeStore{}, cfg, &fakeCache{}, &fakeNotifier{})

		_, err := svc.SubmitFlag(42, 7, "flag{x}", "10.0.0.1")
		assert.ErrorIs(t, err, ErrEventNotActive, string(state))
	}
}

func TestSubmitFlagRateLimited(t *testing.T) {
	cfg := runningConfig()
	cfg.MaxAttempts = 3
	cfg.WindowSeconds = 30
	cfg.CooldownSeconds = 5

	st := &fakeStore{
		TeamIDOfFunc: func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		AttemptTimesSinceFunc: func(userID uint32, since time.Time) ([]time.Time, error) {
			return []time.Time{
				testNow.Add(-25 * time.Second),
				testNow.Add(-10 * time.Second),
				testNow.Add(-2 * time.Second),
			}, nil
		},
	}
	svc := newScoringService(st, cfg, &fakeCache{}, &fakeNotifier{})

	_, err := svc.SubmitFlag(42, 7, "flag{x}", "10.0.0.1")
	var rl *RateLimitedError
	require.ErrorAs(t, err, &rl)
	// 最早一次尝试在 5 秒后滑出 30 秒窗口
	assert.Equal(t, 5, rl.RetryAfter)
}

func TestSubmitFlagChallengeNotVisible(t *testing.T) {
	tests := []struct {
		name string
		load func(id uint32) (*models.Challenge, error)
	}{
		{"不存在", func(id uint32) (*models.Challenge, error) { return nil, gorm.ErrRecordNotFound }},
		{"隐藏", func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateHidden, Flag: "flag{x}"}, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{
				TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
				ChallengeByIDFunc: tt.load,
			}
			svc := newScoringService(st, runningConfig(), &fakeCache{}, &fakeNotifier{})

			_, err := svc.SubmitFlag(42, 7, "flag{x}", "10.0.0.1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// 无队伍选手按 user 维度防重，得分只计入个人，不上排行榜
func TestSubmitFlagWithoutTeam(t *testing.T) {
	var createdSub *models.Submission
	var pointsDelta uint
	st := &fakeStore{
		HasUserSolveFunc: func(challengeID, userID uint32) (bool, error) { return false, nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{solo}", CurrentScore: 200}, nil
		},
		ChallengeForUpdateFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{solo}", CurrentScore: 200}, nil
		},
		CreateSubmissionFunc: func(sub *models.Submission) error { createdSub = sub; return nil },
		AddUserPointsFunc:    func(userID uint32, delta uint) error { pointsDelta = delta; return nil },
		TeamForUpdateFunc: func(id uint32) (*models.Team, error) {
			t.Fatal("无队伍提交不应触碰队伍行")
			return nil, nil
		},
		UpsertScoreboardFunc: func(entry *models.Scoreboard) error {
			t.Fatal("无队伍提交不应写排行榜")
			return nil
		},
		AppendSolveFeedFunc: func(e *models.SolveFeed) error {
			t.Fatal("无队伍提交不应写解题动态")
			return nil
		},
		// 个人练习不推进队伍解题计数，也不触发衰减
		SaveChallengeFunc: func(ch *models.Challenge) error {
			t.Fatal("无队伍提交不应改动题目计数或分值")
			return nil
		},
	}
	svc := newScoringService(st, runningConfig(), &fakeCache{}, &fakeNotifier{})

	awarded, err := svc.SubmitFlag(42, 7, "flag{solo}", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, uint(200), awarded)
	require.NotNil(t, createdSub)
	assert.Nil(t, createdSub.TeamID)
	assert.Equal(t, uint(200), pointsDelta)
}

// MaxAttempts 非正值等价于限流关闭，提交照常通过而不是崩溃或全拦
func TestSubmitFlagRateLimitDisabled(t *testing.T) {
	cfg := runningConfig()
	cfg.MaxAttempts = 0

	st := &fakeStore{
		TeamIDOfFunc: func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		AttemptTimesSinceFunc: func(userID uint32, since time.Time) ([]time.Time, error) {
			t.Fatal("限流关闭时不应统计尝试次数")
			return nil, nil
		},
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{x}", CurrentScore: 100}, nil
		},
		ChallengeForUpdateFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{x}", CurrentScore: 100}, nil
		},
	}
	svc := newScoringService(st, cfg, &fakeCache{}, &fakeNotifier{})

	awarded, err := svc.SubmitFlag(42, 7, "flag{x}", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, uint(100), awarded)
}

func TestSubmitFlagTxErrorPassthrough(t *testing.T) {
	boom := errors.New("db down")
	st := &fakeStore{
		TeamIDOfFunc: func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) {
			return &models.Challenge{ID: id, State: models.ChallengeStateVisible, Flag: "flag{x}"}, nil
		},
		TxFunc: func(fn func(tx Store) error) error { return boom },
	}
	svc := newScoringService(st, runningConfig(), &fakeCache{}, &fakeNotifier{})

	_, err := svc.SubmitFlag(42, 7, "flag{x}", "10.0.0.1")
	assert.ErrorIs(t, err, boom)
}

func TestDecayedScore(t *testing.T) {
	tests := []struct {
		name        string
		initial     uint
		min         uint
		ratio       float32
		solvedCount uint
		want        uint
	}{
		{"无人解出", 500, 100, 0.1, 0, 500},
		{"每解一题减一步", 500, 100, 0.1, 1, 450},
		{"两步", 500, 100, 0.1, 2, 400},
		{"衰减到下限", 500, 100, 0.1, 8, 100},
		{"不低于下限", 500, 100, 0.1, 100, 100},
		{"关闭衰减", 500, 100, 0, 50, 500},
		{"极小比例步长至少为一", 10, 1, 0.01, 3, 7},
		{"下限高于初始分时取初始分", 100, 500, 0.1, 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecayedScore(tt.initial, tt.min, tt.ratio, tt.solvedCount))
		})
	}
}

// 分值是解题次数的确定性单调函数
func TestDecayedScoreMonotonic(t *testing.T) {
	prev := DecayedScore(1000, 200, 0.05, 0)
	for count := uint(1); count <= 30; count++ {
		cur := DecayedScore(1000, 200, 0.05, count)
		assert.LessOrEqual(t, cur, prev, "solvedCount=%d", count)
		assert.GreaterOrEqual(t, cur, uint(200))
		prev = cur
	}
}
