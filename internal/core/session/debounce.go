package session

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/graphstream/pkg/types"
)

// debounceWindow 是 §4.7 规定的去抖窗口
const debounceWindow = 50 * time.Millisecond

// maxNudgesPerBatch 是单条消息里允许携带的节点更新数上限
const maxNudgesPerBatch = 2

// Debouncer 按 slot 合并节点位置更新，latest-wins，每个窗口只对外呈现一次
//
// 多次 Add 落在同一个 50ms 窗口内时，只有最后一次写入的坐标会在窗口到期
// 时被 flush 出去（§8 Property 8：N 次更新合并为服务器观察到的至多一次）。
type Debouncer struct {
	mu      sync.Mutex
	clock   clock.Clock
	window  time.Duration
	pending map[types.Slot]types.Vec3
	timer   *clock.Timer
	onFlush func(map[types.Slot]types.Vec3)
}

// NewDebouncer 创建一个去抖器；onFlush 在每个窗口到期时收到当轮合并结果
func NewDebouncer(clk clock.Clock, onFlush func(map[types.Slot]types.Vec3)) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{
		clock:   clk,
		window:  debounceWindow,
		pending: make(map[types.Slot]types.Vec3),
		onFlush: onFlush,
	}
}

// Add 记录一次针对 slot 的坐标更新，latest-wins 合并到当前窗口
func (d *Debouncer) Add(slot types.Slot, pos types.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[slot] = pos
	if d.timer == nil {
		d.timer = d.clock.AfterFunc(d.window, d.flush)
	}
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	batch := d.pending
	d.pending = make(map[types.Slot]types.Vec3)
	d.timer = nil
	d.mu.Unlock()

	if len(batch) > 0 && d.onFlush != nil {
		d.onFlush(batch)
	}
}

// NudgeUpdate 是客户端在一条消息里携带的一个节点更新
type NudgeUpdate struct {
	Slot     types.Slot
	Position types.Vec3
}

// TruncateBatch 把 updates 截断到 maxNudgesPerBatch 条，返回截断后的切片和
// 是否发生过截断（调用方据此记一条 warning 日志——§4.7 "excess is dropped
// with a warning"）
func TruncateBatch(updates []NudgeUpdate) ([]NudgeUpdate, bool) {
	if len(updates) <= maxNudgesPerBatch {
		return updates, false
	}
	return updates[:maxNudgesPerBatch], true
}
