// file: services/hint_service.go
package services

import (
	"errors"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/cache"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"gorm.io/gorm"
)

// 事务内复查发现赢家已落账时用它走幂等重读
var errAlreadyPurchased = errors.New("提示已被本队购买")

// HintService 让队伍用积分一次性解锁一条提示：
// 扣分与购买记录在同一事务内完成，(team, hint) 唯一约束保证不会重复扣费
type HintService struct {
	store  Store
	cache  cache.Store
	notify Notifier
	now    func() time.Time
}

func NewHintService(store Store, c cache.Store, notify Notifier) *HintService {
	return &HintService{store: store, cache: c, notify: notify, now: time.Now}
}

// PurchaseHint 返回提示内容和队伍剩余积分。
// 重复"购买"是免费的幂等重读，两次返回完全相同的内容
func (s *HintService) PurchaseHint(userID, hintID uint32) (string, uint, error) {
	teamID, err := s.store.TeamIDOf(userID)
	if err != nil {
		return "", 0, err
	}
	if teamID == nil {
		return "", 0, ErrNoTeam
	}

	hint, err := s.store.HintByID(hintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}

	// 所属题目不可见时提示同样不可见
	challenge, err := s.store.ChallengeByID(hint.ChallengeID)
	if err != nil {
		return "", 0, err
	}
	if challenge.State != models.ChallengeStateVisible {
		return "", 0, ErrNotFound
	}

	// 已购买过则直接重读，不扣费
	existing, err := s.store.PurchaseOf(*teamID, hintID)
	if err != nil {
		return "", 0, err
	}
	if existing != nil {
		return s.rereadBalance(hint, *teamID)
	}

	var remaining uint
	err = s.store.Tx(func(tx Store) error {
		team, err := tx.TeamForUpdate(*teamID)
		if err != nil {
			return err
		}

		// 拿到行锁后必须复查购买记录：并发购买的赢家可能刚刚落账并扣费，
		// 此时锁内看到的余额已是扣费后的，不能据此判定积分不足
		again, err := tx.PurchaseOf(*teamID, hintID)
		if err != nil {
			return err
		}
		if again != nil {
			return errAlreadyPurchased
		}

		if team.Points < hint.Cost {
			return ErrInsufficientPoints
		}

		// (team_id, hint_id) 唯一键是并发购买的串行化点，
		// 输家在这里冲突回滚，改走幂等重读
		purchase := &models.HintPurchase{
			TeamID:      *teamID,
			HintID:      hintID,
			ChallengeID: hint.ChallengeID,
			UserID:      userID,
			CostPaid:    hint.Cost, // 固化当前价格，之后改价不追溯
			PurchasedAt: s.now(),
		}
		if err := tx.CreateHintPurchase(purchase); err != nil {
			return err
		}

		team.Points -= hint.Cost
		if err := tx.SaveTeam(team); err != nil {
			return err
		}
		remaining = team.Points

		// 排行榜投影同步扣分，最后解题时间不变（购买不是解题）
		return tx.SetScoreboardScore(team.ID, team.Points)
	})
	if err != nil {
		if errors.Is(err, errAlreadyPurchased) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.rereadBalance(hint, *teamID)
		}
		return "", 0, err
	}

	s.cache.Invalidate(CacheScoreboardPattern)
	s.notify.Publish(ChangeFlags{Scoreboard: true})
	return hint.Content, remaining, nil
}

func (s *HintService) rereadBalance(hint *models.Hint, teamID uint32) (string, uint, error) {
	team, err := s.store.TeamByID(teamID)
	if err != nil {
		return "", 0, err
	}
	return hint.Content, team.Points, nil
}
