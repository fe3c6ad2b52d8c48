// file: services/hint_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newHintService(st *fakeStore, c *fakeCache, n *fakeNotifier) *HintService {
	return &HintService{
		store:  st,
		cache:  c,
		notify: n,
		now:    func() time.Time { return testNow },
	}
}

func hintFixture() (*models.Hint, *models.Challenge) {
	hint := &models.Hint{ID: 5, ChallengeID: 7, Content: "看看栈上的返回地址", Cost: 50}
	challenge := &models.Challenge{ID: 7, State: models.ChallengeStateVisible}
	return hint, challenge
}

// 余额恰好等于价格时允许购买，扣到零分
func TestPurchaseHintExactBalance(t *testing.T) {
	hint, challenge := hintFixture()
	var (
		created    *models.HintPurchase
		savedTeam  *models.Team
		boardScore *uint
	)
	st := &fakeStore{
		TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		HintByIDFunc:      func(id uint32) (*models.Hint, error) { return hint, nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) { return challenge, nil },
		TeamForUpdateFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, TeamName: "team-a", Points: 50}, nil
		},
		CreateHintPurchaseFunc: func(p *models.HintPurchase) error { created = p; return nil },
		SaveTeamFunc:           func(tm *models.Team) error { savedTeam = tm; return nil },
		SetScoreboardScoreFunc: func(teamID uint32, score uint) error { boardScore = &score; return nil },
	}
	c := &fakeCache{}
	n := &fakeNotifier{}
	svc := newHintService(st, c, n)

	content, remaining, err := svc.PurchaseHint(42, 5)
	require.NoError(t, err)
	assert.Equal(t, hint.Content, content)
	assert.Zero(t, remaining)

	require.NotNil(t, created)
	assert.Equal(t, uint32(3), created.TeamID)
	assert.Equal(t, uint32(5), created.HintID)
	assert.Equal(t, uint32(42), created.UserID)
	assert.Equal(t, uint(50), created.CostPaid)

	require.NotNil(t, savedTeam)
	assert.Zero(t, savedTeam.Points)
	require.NotNil(t, boardScore)
	assert.Zero(t, *boardScore)

	assert.Contains(t, c.invalidated, CacheScoreboardPattern)
	require.Len(t, n.published, 1)
	assert.Equal(t, ChangeFlags{Scoreboard: true}, n.published[0])
}

func TestPurchaseHintInsufficientPoints(t *testing.T) {
	hint, challenge := hintFixture()
	st := &fakeStore{
		TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		HintByIDFunc:      func(id uint32) (*models.Hint, error) { return hint, nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) { return challenge, nil },
		TeamForUpdateFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, Points: 49}, nil
		},
		CreateHintPurchaseFunc: func(p *models.HintPurchase) error {
			t.Fatal("积分不足时不应落购买记录")
			return nil
		},
	}
	n := &fakeNotifier{}
	svc := newHintService(st, &fakeCache{}, n)

	_, _, err := svc.PurchaseHint(42, 5)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Empty(t, n.published)
}

func TestPurchaseHintNoTeam(t *testing.T) {
	svc := newHintService(&fakeStore{}, &fakeCache{}, &fakeNotifier{})

	_, _, err := svc.PurchaseHint(42, 5)
	assert.ErrorIs(t, err, ErrNoTeam)
}

// 重复购买是免费的幂等重读，两次拿到完全相同的内容
func TestPurchaseHintIdempotent(t *testing.T) {
	hint, challenge := hintFixture()
	st := &fakeStore{
		TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		HintByIDFunc:      func(id uint32) (*models.Hint, error) { return hint, nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) { return challenge, nil },
		PurchaseOfFunc: func(teamID, hintID uint32) (*models.HintPurchase, error) {
			return &models.HintPurchase{TeamID: teamID, HintID: hintID, CostPaid: 50}, nil
		},
		TeamByIDFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, Points: 70}, nil
		},
		TxFunc: func(fn func(tx Store) error) error {
			t.Fatal("已购买过不应再开事务")
			return nil
		},
	}
	n := &fakeNotifier{}
	svc := newHintService(st, &fakeCache{}, n)

	content, remaining, err := svc.PurchaseHint(42, 5)
	require.NoError(t, err)
	assert.Equal(t, hint.Content, content)
	assert.Equal(t, uint(70), remaining)
	assert.Empty(t, n.published)
}

// 并发购买的输家在唯一键上冲突回滚，改走幂等重读且只扣费一次
func TestPurchaseHintDuplicateKeyRace(t *testing.T) {
	hint, challenge := hintFixture()
	st := &fakeStore{
		TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		HintByIDFunc:      func(id uint32) (*models.Hint, error) { return hint, nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) { return challenge, nil },
		TeamForUpdateFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, Points: 200}, nil
		},
		CreateHintPurchaseFunc: func(p *models.HintPurchase) error { return gorm.ErrDuplicatedKey },
		// 赢家已经扣过费，重读拿到的是扣费后的余额
		TeamByIDFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, Points: 150}, nil
		},
		SaveTeamFunc: func(tm *models.Team) error {
			t.Fatal("冲突回滚后不应保存扣分")
			return nil
		},
	}
	n := &fakeNotifier{}
	svc := newHintService(st, &fakeCache{}, n)

	content, remaining, err := svc.PurchaseHint(42, 5)
	require.NoError(t, err)
	assert.Equal(t, hint.Content, content)
	assert.Equal(t, uint(150), remaining)
	assert.Empty(t, n.published)
}

// 另一种并发交错：赢家在输家的事务前已落账扣费，
// 输家锁内看到的余额不足以再买一次，但必须复查出已有购买记录走幂等重读，
// 而不是误报积分不足
func TestPurchaseHintRaceAfterWinnerDebit(t *testing.T) {
	hint, challenge := hintFixture()
	purchaseLookups := 0
	st := &fakeStore{
		TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
		HintByIDFunc:      func(id uint32) (*models.Hint, error) { return hint, nil },
		ChallengeByIDFunc: func(id uint32) (*models.Challenge, error) { return challenge, nil },
		// 事务前的预检还看不到赢家的购买记录，行锁之后才看得到
		PurchaseOfFunc: func(teamID, hintID uint32) (*models.HintPurchase, error) {
			purchaseLookups++
			if purchaseLookups == 1 {
				return nil, nil
			}
			return &models.HintPurchase{TeamID: teamID, HintID: hintID, CostPaid: 50}, nil
		},
		// 赢家已扣费，锁内余额不够再买一次
		TeamForUpdateFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, Points: 0}, nil
		},
		TeamByIDFunc: func(id uint32) (*models.Team, error) {
			return &models.Team{ID: id, Points: 0}, nil
		},
		CreateHintPurchaseFunc: func(p *models.HintPurchase) error {
			t.Fatal("复查出已有购买后不应再插入")
			return nil
		},
		SaveTeamFunc: func(tm *models.Team) error {
			t.Fatal("幂等重读不应扣分")
			return nil
		},
	}
	n := &fakeNotifier{}
	svc := newHintService(st, &fakeCache{}, n)

	content, remaining, err := svc.PurchaseHint(42, 5)
	require.NoError(t, err)
	assert.Equal(t, hint.Content, content)
	assert.Zero(t, remaining)
	assert.Equal(t, 2, purchaseLookups)
	assert.Empty(t, n.published)
}

func TestPurchaseHintNotVisible(t *testing.T) {
	tests := []struct {
		name      string
		hint      func(id uint32) (*models.Hint, error)
		challenge func(id uint32) (*models.Challenge, error)
	}{
		{
			"提示不存在",
			func(id uint32) (*models.Hint, error) { return nil, gorm.ErrRecordNotFound },
			nil,
		},
		{
			"所属题目隐藏",
			func(id uint32) (*models.Hint, error) {
				return &models.Hint{ID: id, ChallengeID: 7, Content: "x", Cost: 10}, nil
			},
			func(id uint32) (*models.Challenge, error) {
				return &models.Challenge{ID: id, State: models.ChallengeStateHidden}, nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeStore{
				TeamIDOfFunc:      func(userID uint32) (*uint32, error) { return uint32Ptr(3), nil },
				HintByIDFunc:      tt.hint,
				ChallengeByIDFunc: tt.challenge,
			}
			svc := newHintService(st, &fakeCache{}, &fakeNotifier{})

			_, _, err := svc.PurchaseHint(42, 5)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
