package config

import "sync"

// Provider 把一份配置分发给各个内部组件，并支持运行期整体替换
//
// 更新是原子的、全有或全无的：ApplyUpdate 先在候选副本上运行 Validate，
// 只有整份候选通过校验才会替换当前配置；任何一条字段错误都会让此前的
// 配置保持不变（§7 ValidationFailed）。
type Provider struct {
	mu     sync.RWMutex
	config *Config
}

// NewProvider 用一份已经校验过的配置创建提供者
func NewProvider(cfg *Config) *Provider {
	return &Provider{config: cfg}
}

// GetConfig 返回当前完整配置的拷贝
func (p *Provider) GetConfig() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.config
}

// GetPhysics 返回当前物理内核配置
func (p *Provider) GetPhysics() PhysicsConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.Physics
}

// GetSession 返回当前会话配置
func (p *Provider) GetSession() SessionConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.Session
}

// GetSimulation 返回当前模拟循环配置
func (p *Provider) GetSimulation() SimulationConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.Simulation
}

// GetTransport 返回当前传输层配置
func (p *Provider) GetTransport() TransportConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.Transport
}

// ApplyUpdate 校验一份候选配置整体，只在全部通过时原子替换当前配置
func (p *Provider) ApplyUpdate(candidate Config) error {
	if err := Validate(&candidate); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.config = &candidate
	return nil
}

// ApplyPhysicsUpdate 只替换物理参数子集，其余字段保持不变；候选整体仍须
// 通过校验才会生效
func (p *Provider) ApplyPhysicsUpdate(patch PhysicsConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidate := *p.config
	candidate.Physics = patch
	if err := Validate(&candidate); err != nil {
		return err
	}
	p.config = &candidate
	return nil
}
