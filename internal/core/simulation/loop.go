package simulation

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/graphstream/internal/core/metrics"
	"github.com/dep2p/graphstream/internal/core/physics"
	"github.com/dep2p/graphstream/pkg/interfaces"
	"github.com/dep2p/graphstream/pkg/lib/log"
	"github.com/dep2p/graphstream/pkg/types"
)

var logger = log.Logger("simulation")

// Config 是驱动循环的可调参数（§4.5、§6.4）
type Config struct {
	// UpdateRate 是快照产出的目标频率，1-120 Hz
	UpdateRate float64
	// AckWindow 是 randomizing 之后忽略受影响 slot 入站更新的时长，默认 5s
	AckWindow time.Duration
	// RandomRadius 是随机重新布点的球半径，默认不超过 5
	RandomRadius float32
	Params       physics.Params
}

// DefaultConfig 返回 §6.4 列出的默认值
func DefaultConfig() Config {
	return Config{
		UpdateRate:   60,
		AckWindow:    5 * time.Second,
		RandomRadius: 5,
		Params:       physics.DefaultParams(),
	}
}

func (c Config) interval() time.Duration {
	rate := c.UpdateRate
	if rate < 1 {
		rate = 1
	}
	if rate > 120 {
		rate = 120
	}
	return time.Duration(float64(time.Second) / rate)
}

// Loop 是固定步长的模拟驱动（§4.5）
//
// nodes/edges 是循环独占的可变状态；外部只通过 SetGraph/Nudge/Snapshot 与
// 它交互，从不直接持有内部切片，这样 tick 的读写不需要对外暴露锁。
type Loop struct {
	mu      sync.Mutex
	clock   clock.Clock
	kernel  interfaces.Kernel
	bcast   interfaces.Broadcaster
	cfg     Config
	rng     *rand.Rand
	metrics *metrics.Registry

	state    State
	nodes    []types.Node
	edges    []types.Edge
	index    map[types.Slot]int
	pending  map[types.Slot]types.Vec3
	lastTick time.Time

	ignoredUntil map[types.Slot]time.Time

	// forceTick carries requests for an immediate extra tick (§6.3
	// applyForces): a buffered, non-blocking send onto the same channel Run
	// selects on, so a burst of requests collapses into one pending tick.
	forceTick chan struct{}
}

// New 构造一个初始状态为 paused、图为空的循环
//
// reg 由调用方在启动时构造并拥有；循环只持有引用，不持有全局单例。
func New(kernel interfaces.Kernel, bcast interfaces.Broadcaster, cfg Config, clk clock.Clock, reg *metrics.Registry) *Loop {
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		clock:        clk,
		kernel:       kernel,
		bcast:        bcast,
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(clk.Now().UnixNano())),
		metrics:      reg,
		state:        StatePaused,
		index:        make(map[types.Slot]int),
		pending:      make(map[types.Slot]types.Vec3),
		ignoredUntil: make(map[types.Slot]time.Time),
		forceTick:    make(chan struct{}, 1),
	}
}

// SetGraph 替换循环持有的节点/边集合，重建 slot 索引
func (l *Loop) SetGraph(nodes []types.Node, edges []types.Edge) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nodes = nodes
	l.edges = edges
	l.index = make(map[types.Slot]int, len(nodes))
	for i, n := range nodes {
		l.index[n.Slot] = i
	}
}

// UpdatePhysicsParams 原地替换内核的参数集，保留当前跑的是标量还是并行内核
// （§4.9 settings_update 生效路径：校验通过之后回填到正在运行的内核）
func (l *Loop) UpdatePhysicsParams(p physics.Params) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg.Params = p
	switch l.kernel.(type) {
	case physics.ParallelKernel:
		l.kernel = physics.ParallelKernel{Params: p}
	default:
		l.kernel = physics.ScalarKernel{Params: p}
	}
}

// State 返回当前模式
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Pause 转入 paused：后续 tick 仍吸收 nudge，但不推进物理、不产出快照
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StatePaused
	logger.Debug("simulation paused")
}

// Resume 转入 running
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = StateRunning
	l.lastTick = time.Time{}
	logger.Debug("simulation running")
}

// RequestTick 请求在下一个常规 tick 之前额外推进一次内核（§6.3
// applyForces）；非阻塞，重复请求在被消费前会合并成一次
func (l *Loop) RequestTick() {
	select {
	case l.forceTick <- struct{}{}:
	default:
	}
}

// Snapshot 返回当前节点集合的拷贝
func (l *Loop) Snapshot() []types.Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}

// Nudge 记录一次用户发起的坐标更新，在下一个 tick 边界生效
//
// 落在 randomizing 确认窗口内的 slot 会被静默丢弃，返回 false（S6）。
func (l *Loop) Nudge(slot types.Slot, pos types.Vec3) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[slot]; !ok {
		l.metrics.InvalidSlotNudgesTotal.Inc()
		return false
	}

	if until, ok := l.ignoredUntil[slot]; ok {
		if l.clock.Now().Before(until) {
			return false
		}
		delete(l.ignoredUntil, slot)
	}

	l.pending[slot] = pos
	return true
}

// Randomize 转入 randomizing：给每个活跃节点重新撒点，零速度，并在 AckWindow
// 之后自动回到 running（§4.5）
func (l *Loop) Randomize() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = StateRandomizing
	until := l.clock.Now().Add(l.cfg.AckWindow)

	for i := range l.nodes {
		if !l.nodes[i].Flags.Active() {
			continue
		}
		l.nodes[i].Position = randomSpherePoint(l.rng, l.cfg.RandomRadius)
		l.nodes[i].Velocity = types.Vec3{}
		l.ignoredUntil[l.nodes[i].Slot] = until
	}

	l.clock.AfterFunc(l.cfg.AckWindow, l.finishRandomizing)
	logger.Info("randomizing node positions", "count", len(l.ignoredUntil), "radius", l.cfg.RandomRadius)
}

func (l *Loop) finishRandomizing() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateRandomizing {
		l.state = StateRunning
	}
	now := l.clock.Now()
	for slot, until := range l.ignoredUntil {
		if !now.Before(until) {
			delete(l.ignoredUntil, slot)
		}
	}
}

// Run 阻塞地驱动 tick 循环，直到 ctx 被取消
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.Ticker(l.cfg.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick()
		case <-l.forceTick:
			l.tick()
		}
	}
}

// tick 应用 pending nudge，然后按当前状态决定是否推进物理并产出快照
func (l *Loop) tick() {
	l.mu.Lock()

	l.applyPendingLocked()

	if l.state != StateRunning {
		l.mu.Unlock()
		return
	}

	start := l.clock.Now()
	if !l.lastTick.IsZero() {
		if missed := int(start.Sub(l.lastTick)/l.cfg.interval()) - 1; missed > 0 {
			l.metrics.SnapshotsSkippedTotal.Add(float64(missed))
		}
	}
	l.lastTick = start

	l.nodes = l.kernel.Step(l.nodes, l.edges)
	l.metrics.TickDuration.Observe(l.clock.Now().Sub(start).Seconds())

	snapshot := make([]types.Node, len(l.nodes))
	copy(snapshot, l.nodes)
	l.mu.Unlock()

	l.bcast.BroadcastSnapshot(snapshot)
}

func (l *Loop) applyPendingLocked() {
	for slot, pos := range l.pending {
		if i, ok := l.index[slot]; ok {
			l.nodes[i].Position = pos
			l.nodes[i].Velocity = types.Vec3{}
		}
	}
	if len(l.pending) > 0 {
		l.pending = make(map[types.Slot]types.Vec3)
	}
}

// randomSpherePoint 在半径为 radius 的球体内均匀采样一点（§4.5）
func randomSpherePoint(rng *rand.Rand, radius float32) types.Vec3 {
	u1 := rng.Float64()
	u2 := rng.Float64()
	u3 := rng.Float64()

	theta := math.Acos(2*u1 - 1)
	phi := 2 * math.Pi * u2
	r := float64(radius) * math.Cbrt(u3)

	return types.Vec3{
		X: float32(r * math.Sin(theta) * math.Cos(phi)),
		Y: float32(r * math.Sin(theta) * math.Sin(phi)),
		Z: float32(r * math.Cos(theta)),
	}
}
