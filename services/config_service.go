// file: services/config_service.go
package services

import (
	"sync"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"gorm.io/gorm"
)

// ConfigProvider 向计分核心提供全局配置快照。
// 注入接口而不是直接读单例，测试可以换成固定配置
type ConfigProvider interface {
	Get() (models.EventConfig, error)
}

// DBConfigProvider 读取 ID=1 的配置单例，带一个很短的进程内缓存,
// 管理员修改配置后调用 Invalidate 立即生效
type DBConfigProvider struct {
	db  *gorm.DB
	ttl time.Duration

	mu        sync.Mutex
	cached    models.EventConfig
	fetchedAt time.Time
}

func NewDBConfigProvider(db *gorm.DB) *DBConfigProvider {
	return &DBConfigProvider{db: db, ttl: 2 * time.Second}
}

// EnsureDefault 启动时兜底：配置行不存在则写入默认值
func (p *DBConfigProvider) EnsureDefault() error {
	cfg := models.DefaultEventConfig()
	return p.db.Where("id = ?", 1).FirstOrCreate(&cfg).Error
}

func (p *DBConfigProvider) Get() (models.EventConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.fetchedAt.IsZero() && time.Since(p.fetchedAt) < p.ttl {
		return p.cached, nil
	}

	var cfg models.EventConfig
	if err := p.db.First(&cfg, 1).Error; err != nil {
		return models.EventConfig{}, err
	}
	p.cached = cfg
	p.fetchedAt = time.Now()
	return cfg, nil
}

// Invalidate 丢弃进程内缓存，下一次 Get 重新读库
func (p *DBConfigProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchedAt = time.Time{}
}
