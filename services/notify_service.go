// file: services/notify_service.go
package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// ChangeChannel 是变更通知的 redis 频道名，SSE 端点订阅它
const ChangeChannel = "live:changes"

// ChangeFlags 描述哪几类数据发生了变化。事件本身不携带数据，
// 客户端收到后自行回源拉取对应资源
type ChangeFlags struct {
	Challenges bool `json:"challenges,omitempty"`
	Scoreboard bool `json:"scoreboard,omitempty"`
	Status     bool `json:"status,omitempty"`
}

// Notifier 在状态变更提交之后做一次尽力而为的广播。
// 发布失败只记日志，绝不影响已提交的业务结果
type Notifier interface {
	Publish(flags ChangeFlags)
}

// RedisNotifier 通过 redis pub/sub 扇出变更通知
type RedisNotifier struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, ctx: context.Background()}
}

func (n *RedisNotifier) Publish(flags ChangeFlags) {
	payload, err := json.Marshal(flags)
	if err != nil {
		log.Printf("notify: failed to marshal change flags: %v", err)
		return
	}
	if err := n.rdb.Publish(n.ctx, ChangeChannel, payload).Err(); err != nil {
		log.Printf("notify: failed to publish change flags: %v", err)
	}
}
