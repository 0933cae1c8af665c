package server

import "sync"

// RoomManager 管理多个房间的生命周期，并持有注入的持久化存储
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	store PlayerStore
}

var (
	defaultManager *RoomManager
	once           sync.Once
)

// GetRoomManager 单例房间管理器
func GetRoomManager() *RoomManager {
	once.Do(func() {
		defaultManager = &RoomManager{rooms: make(map[string]*Room)}
	})
	return defaultManager
}

// Configure 注入持久化存储（需在创建任何房间之前调用）
func (m *RoomManager) Configure(store PlayerStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = store
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.store)
		// 默认注册空钩子，给后续服务端玩法留一个固定入口
		r.RegisterHook(PlayerLogicHook{})
		m.rooms[id] = r
		r.StartTicker()
	}
	return r
}

// Shutdown 停止所有房间的 Tick 循环（优雅退出用）
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		r.Shutdown()
	}
}
