package identity

import (
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dep2p/graphstream/pkg/types"
)

// reverseCacheSize 是 lookup(slot) 只读缓存的容量；缓存只是转发到权威 map
// 之前的一层加速，从不作为真相来源，reset() 必须能把它和权威 map 一起清空。
const reverseCacheSize = 4096

// Table 维护外部字符串 ID 与紧凑 Slot 之间的双向映射（§4.3）
//
// 数字型外部 ID（可解析为十进制 uint32 的字符串，且规范形式——没有前导零、
// 没有符号）直接映射到该数值本身；其余 ID 领取 next 计数器发出的新 Slot。
// forward/reverse 这一对 map 是权威状态；lru 缓存只是 lookup 的读穿透加速层。
type Table struct {
	mu      sync.RWMutex
	forward map[types.ExternalID]types.Slot
	reverse map[types.Slot]types.ExternalID
	next    uint32

	cache *lru.Cache[types.Slot, types.ExternalID]
}

// NewTable 返回一个空表
func NewTable() *Table {
	cache, err := lru.New[types.Slot, types.ExternalID](reverseCacheSize)
	if err != nil {
		// 只有在 size <= 0 时才会失败，而 reverseCacheSize 是编译期常量
		panic("identity: invalid lru cache size")
	}
	return &Table{
		forward: make(map[types.ExternalID]types.Slot),
		reverse: make(map[types.Slot]types.ExternalID),
		cache:   cache,
	}
}

// Intern 返回 id 对应的 Slot，必要时分配一个新的
//
// 已经见过的 id 返回之前分配的 Slot（幂等）。规范数字字符串直接映射到其数值，
// 不消耗 next 计数器。其它字符串按 next 计数器领取新 Slot，随后 next 自增。
func (t *Table) Intern(id types.ExternalID) types.Slot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if slot, ok := t.forward[id]; ok {
		return slot
	}

	slot, minted := numericSlot(id)
	if !minted {
		slot = types.Slot(t.next)
		t.next++
	}

	t.forward[id] = slot
	t.reverse[slot] = id
	t.cache.Remove(slot)
	return slot
}

// Reverse 查找 id 是否已经被 intern 过，不会分配新 Slot
func (t *Table) Reverse(id types.ExternalID) (types.Slot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	slot, ok := t.forward[id]
	return slot, ok
}

// Lookup 返回 slot 对应的外部 ID
func (t *Table) Lookup(slot types.Slot) (types.ExternalID, error) {
	if id, ok := t.cache.Get(slot); ok {
		return id, nil
	}

	t.mu.RLock()
	id, ok := t.reverse[slot]
	t.mu.RUnlock()
	if !ok {
		return "", ErrUnknownSlot
	}

	t.cache.Add(slot, id)
	return id, nil
}

// Reset 清空双向映射并把计数器归零；调用方在图代切换边界串行调用
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.forward = make(map[types.ExternalID]types.Slot)
	t.reverse = make(map[types.Slot]types.ExternalID)
	t.next = 0
	t.cache.Purge()
}

// numericSlot 判断 id 是否是规范的十进制 uint32 字符串，是则返回其数值
//
// 规范形式排除前导零（"007"）和符号，因为它们与数值 ID 的十进制打印形式
// 不是一一对应的；这样的字符串落回非数字分支，领取一个新铸造的 Slot。
func numericSlot(id types.ExternalID) (types.Slot, bool) {
	s := string(id)
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	if strconv.FormatUint(v, 10) != s {
		return 0, false
	}
	return types.Slot(v), true
}
