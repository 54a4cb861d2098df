package control

import (
	"encoding/json"
	"time"
)

// ══════════════════════════════════════════════════════════════════
// 服务器 → 客户端
// ══════════════════════════════════════════════════════════════════

const (
	TypeConnectionEstablished = "connection_established"
	TypeLoading               = "loading"
	TypeUpdatesStarted        = "updatesStarted"
	TypeSettings              = "settings"

	TypeRequestInitialData  = "requestInitialData"
	TypeEnableRandomization = "enableRandomization"
	TypePauseSimulation     = "pauseSimulation"
	TypeApplyForces         = "applyForces"
	TypeSettingsUpdate      = "settings_update"
)

// ConnectionEstablished 允许二进制流量开始（§4.6 READY 前置条件）
type ConnectionEstablished struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// NewConnectionEstablished 构造一条以给定时刻为时间戳的消息
func NewConnectionEstablished(at time.Time) ConnectionEstablished {
	return ConnectionEstablished{Type: TypeConnectionEstablished, Timestamp: at.UnixMilli()}
}

// Loading 抑制客户端物理驱动的更新展示，直到 UpdatesStarted 到达
type Loading struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewLoading(message string) Loading {
	return Loading{Type: TypeLoading, Message: message}
}

// UpdatesStarted 表示更新已经在流动
type UpdatesStarted struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func NewUpdatesStarted(at time.Time) UpdatesStarted {
	return UpdatesStarted{Type: TypeUpdatesStarted, Timestamp: at.UnixMilli()}
}

// SettingsMessage 承载一次权威（服务器 → 客户端，"settings"）或提议
// （客户端 → 服务器，"settings_update"）的单项设置变更
type SettingsMessage struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Setting  string `json:"setting"`
	Value    any    `json:"value"`
}

func NewSettings(category, setting string, value any) SettingsMessage {
	return SettingsMessage{Type: TypeSettings, Category: category, Setting: setting, Value: value}
}

func NewSettingsUpdate(category, setting string, value any) SettingsMessage {
	return SettingsMessage{Type: TypeSettingsUpdate, Category: category, Setting: setting, Value: value}
}

// ══════════════════════════════════════════════════════════════════
// 客户端 → 服务器
// ══════════════════════════════════════════════════════════════════

// RequestInitialData 请求一次性快照，并让服务器进入流式模式
type RequestInitialData struct {
	Type string `json:"type"`
}

func NewRequestInitialData() RequestInitialData {
	return RequestInitialData{Type: TypeRequestInitialData}
}

// EnableRandomization 打开/关闭服务器侧的重新撒点
type EnableRandomization struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

func NewEnableRandomization(enabled bool) EnableRandomization {
	return EnableRandomization{Type: TypeEnableRandomization, Enabled: enabled}
}

// PauseSimulation 暂停/恢复物理
type PauseSimulation struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

func NewPauseSimulation(enabled bool) PauseSimulation {
	return PauseSimulation{Type: TypePauseSimulation, Enabled: enabled}
}

// ApplyForces 请求立即推进一次内核 tick
type ApplyForces struct {
	Type             string `json:"type"`
	Timestamp        int64  `json:"timestamp"`
	ForceCalculation bool   `json:"forceCalculation"`
}

func NewApplyForces(at time.Time) ApplyForces {
	return ApplyForces{Type: TypeApplyForces, Timestamp: at.UnixMilli(), ForceCalculation: true}
}

// ══════════════════════════════════════════════════════════════════
// 解码
// ══════════════════════════════════════════════════════════════════

type envelope struct {
	Type string `json:"type"`
}

// PeekType 只读取 "type" 字段，不解析消息的其余部分
func PeekType(data []byte) (string, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return "", err
	}
	return e.Type, nil
}

// Decode 按 "type" 字段把 data 解析成对应的具体消息类型
//
// 未知类型返回 ErrUnknownType；调用方应当把它当作"忽略并记 debug 日志"，
// 而不是会话级错误。
func Decode(data []byte) (any, error) {
	typ, err := PeekType(data)
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeConnectionEstablished:
		var m ConnectionEstablished
		return m, json.Unmarshal(data, &m)
	case TypeLoading:
		var m Loading
		return m, json.Unmarshal(data, &m)
	case TypeUpdatesStarted:
		var m UpdatesStarted
		return m, json.Unmarshal(data, &m)
	case TypeSettings, TypeSettingsUpdate:
		var m SettingsMessage
		return m, json.Unmarshal(data, &m)
	case TypeRequestInitialData:
		var m RequestInitialData
		return m, json.Unmarshal(data, &m)
	case TypeEnableRandomization:
		var m EnableRandomization
		return m, json.Unmarshal(data, &m)
	case TypePauseSimulation:
		var m PauseSimulation
		return m, json.Unmarshal(data, &m)
	case TypeApplyForces:
		var m ApplyForces
		return m, json.Unmarshal(data, &m)
	default:
		return nil, ErrUnknownType
	}
}
