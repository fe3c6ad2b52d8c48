// file: services/fakes_test.go
package services

import (
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
)

// fakeStore 以函数字段逐方法替换存储实现，未设置的方法返回零值。
// Tx 默认直接以自身执行回调，等价于"事务必然提交"
type fakeStore struct {
	TxFunc                  func(fn func(tx Store) error) error
	TeamIDOfFunc            func(userID uint32) (*uint32, error)
	TeamByIDFunc            func(id uint32) (*models.Team, error)
	TeamForUpdateFunc       func(id uint32) (*models.Team, error)
	TeamMembersFunc         func(teamID uint32) ([]models.User, error)
	SaveTeamFunc            func(team *models.Team) error
	ChallengeByIDFunc       func(id uint32) (*models.Challenge, error)
	ChallengeForUpdateFunc  func(id uint32) (*models.Challenge, error)
	SaveChallengeFunc       func(ch *models.Challenge) error
	AttemptTimesSinceFunc   func(userID uint32, since time.Time) ([]time.Time, error)
	LogAttemptFunc          func(entry *models.SubmissionLog) error
	HasTeamSolveFunc        func(challengeID, teamID uint32) (bool, error)
	HasUserSolveFunc        func(challengeID, userID uint32) (bool, error)
	CreateSubmissionFunc    func(sub *models.Submission) error
	AddUserPointsFunc       func(userID uint32, delta uint) error
	HintByIDFunc            func(id uint32) (*models.Hint, error)
	PurchaseOfFunc          func(teamID, hintID uint32) (*models.HintPurchase, error)
	CreateHintPurchaseFunc  func(p *models.HintPurchase) error
	UpsertScoreboardFunc    func(entry *models.Scoreboard) error
	SetScoreboardScoreFunc  func(teamID uint32, score uint) error
	ScoreboardEntryOfFunc   func(teamID uint32) (*models.Scoreboard, error)
	ScoreboardEntriesFunc   func() ([]models.Scoreboard, error)
	AggregateTeamScoresFunc func() ([]TeamAggregate, error)
	ReplaceScoreboardFunc   func(entries []models.Scoreboard) error
	AppendSolveFeedFunc     func(entry *models.SolveFeed) error
}

func (f *fakeStore) Tx(fn func(tx Store) error) error {
	if f.TxFunc != nil {
		return f.TxFunc(fn)
	}
	return fn(f)
}

func (f *fakeStore) TeamIDOf(userID uint32) (*uint32, error) {
	if f.TeamIDOfFunc != nil {
		return f.TeamIDOfFunc(userID)
	}
	return nil, nil
}

func (f *fakeStore) TeamByID(id uint32) (*models.Team, error) {
	if f.TeamByIDFunc != nil {
		return f.TeamByIDFunc(id)
	}
	return &models.Team{ID: id}, nil
}

func (f *fakeStore) TeamForUpdate(id uint32) (*models.Team, error) {
	if f.TeamForUpdateFunc != nil {
		return f.TeamForUpdateFunc(id)
	}
	return &models.Team{ID: id}, nil
}

func (f *fakeStore) TeamMembers(teamID uint32) ([]models.User, error) {
	if f.TeamMembersFunc != nil {
		return f.TeamMembersFunc(teamID)
	}
	return nil, nil
}

func (f *fakeStore) SaveTeam(team *models.Team) error {
	if f.SaveTeamFunc != nil {
		return f.SaveTeamFunc(team)
	}
	return nil
}

func (f *fakeStore) ChallengeByID(id uint32) (*models.Challenge, error) {
	if f.ChallengeByIDFunc != nil {
		return f.ChallengeByIDFunc(id)
	}
	return &models.Challenge{ID: id, State: models.ChallengeStateVisible}, nil
}

func (f *fakeStore) ChallengeForUpdate(id uint32) (*models.Challenge, error) {
	if f.ChallengeForUpdateFunc != nil {
		return f.ChallengeForUpdateFunc(id)
	}
	return &models.Challenge{ID: id, State: models.ChallengeStateVisible}, nil
}

func (f *fakeStore) SaveChallenge(ch *models.Challenge) error {
	if f.SaveChallengeFunc != nil {
		return f.SaveChallengeFunc(ch)
	}
	return nil
}

func (f *fakeStore) AttemptTimesSince(userID uint32, since time.Time) ([]time.Time, error) {
	if f.AttemptTimesSinceFunc != nil {
		return f.AttemptTimesSinceFunc(userID, since)
	}
	return nil, nil
}

func (f *fakeStore) LogAttempt(entry *models.SubmissionLog) error {
	if f.LogAttemptFunc != nil {
		return f.LogAttemptFunc(entry)
	}
	return nil
}

func (f *fakeStore) HasTeamSolve(challengeID, teamID uint32) (bool, error) {
	if f.HasTeamSolveFunc != nil {
		return f.HasTeamSolveFunc(challengeID, teamID)
	}
	return false, nil
}

func (f *fakeStore) HasUserSolve(challengeID, userID uint32) (bool, error) {
	if f.HasUserSolveFunc != nil {
		return f.HasUserSolveFunc(challengeID, userID)
	}
	return false, nil
}

func (f *fakeStore) CreateSubmission(sub *models.Submission) error {
	if f.CreateSubmissionFunc != nil {
		return f.CreateSubmissionFunc(sub)
	}
	return nil
}

func (f *fakeStore) AddUserPoints(userID uint32, delta uint) error {
	if f.AddUserPointsFunc != nil {
		return f.AddUserPointsFunc(userID, delta)
	}
	return nil
}

func (f *fakeStore) HintByID(id uint32) (*models.Hint, error) {
	if f.HintByIDFunc != nil {
		return f.HintByIDFunc(id)
	}
	return &models.Hint{ID: id}, nil
}

func (f *fakeStore) PurchaseOf(teamID, hintID uint32) (*models.HintPurchase, error) {
	if f.PurchaseOfFunc != nil {
		return f.PurchaseOfFunc(teamID, hintID)
	}
	return nil, nil
}

func (f *fakeStore) CreateHintPurchase(p *models.HintPurchase) error {
	if f.CreateHintPurchaseFunc != nil {
		return f.CreateHintPurchaseFunc(p)
	}
	return nil
}

func (f *fakeStore) UpsertScoreboard(entry *models.Scoreboard) error {
	if f.UpsertScoreboardFunc != nil {
		return f.UpsertScoreboardFunc(entry)
	}
	return nil
}

func (f *fakeStore) SetScoreboardScore(teamID uint32, score uint) error {
	if f.SetScoreboardScoreFunc != nil {
		return f.SetScoreboardScoreFunc(teamID, score)
	}
	return nil
}

func (f *fakeStore) ScoreboardEntryOf(teamID uint32) (*models.Scoreboard, error) {
	if f.ScoreboardEntryOfFunc != nil {
		return f.ScoreboardEntryOfFunc(teamID)
	}
	return nil, nil
}

func (f *fakeStore) ScoreboardEntries() ([]models.Scoreboard, error) {
	if f.ScoreboardEntriesFunc != nil {
		return f.ScoreboardEntriesFunc()
	}
	return nil, nil
}

func (f *fakeStore) AggregateTeamScores() ([]TeamAggregate, error) {
	if f.AggregateTeamScoresFunc != nil {
		return f.AggregateTeamScoresFunc()
	}
	return nil, nil
}

func (f *fakeStore) ReplaceScoreboard(entries []models.Scoreboard) error {
	if f.ReplaceScoreboardFunc != nil {
		return f.ReplaceScoreboardFunc(entries)
	}
	return nil
}

func (f *fakeStore) AppendSolveFeed(entry *models.SolveFeed) error {
	if f.AppendSolveFeedFunc != nil {
		return f.AppendSolveFeedFunc(entry)
	}
	return nil
}

// fixedConfig 返回固定配置快照的 ConfigProvider
type fixedConfig struct {
	cfg models.EventConfig
	err error
}

func (c fixedConfig) Get() (models.EventConfig, error) {
	return c.cfg, c.err
}

// fakeCache 记录读写和失效调用
type fakeCache struct {
	data        map[string]string
	sets        map[string]string
	invalidated []string
}

func (c *fakeCache) Get(key string) (string, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) Set(key, value string, _ time.Duration) {
	if c.sets == nil {
		c.sets = make(map[string]string)
	}
	c.sets[key] = value
}

func (c *fakeCache) Invalidate(pattern string) {
	c.invalidated = append(c.invalidated, pattern)
}

// fakeNotifier 记录每次广播的变更标记
type fakeNotifier struct {
	published []ChangeFlags
}

func (n *fakeNotifier) Publish(flags ChangeFlags) {
	n.published = append(n.published, flags)
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
