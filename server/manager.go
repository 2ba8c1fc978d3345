package server

import (
	"sync"

	"snakearena/game"
)

// RoomManager 管理多个房间的生命周期；所有房间共享同一份配置与最高分存储
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   Config
	store game.BestStore
}

// NewRoomManager 创建房间管理器；store 为 nil 时每个房间各自在内存中记分
func NewRoomManager(cfg Config, store game.BestStore) *RoomManager {
	return &RoomManager{rooms: make(map[string]*Room), cfg: cfg, store: store}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		var err error
		r, err = NewRoom(id, m.cfg, m.store)
		if err != nil {
			return nil, err
		}
		m.rooms[id] = r
		r.StartTicker()
	}
	return r, nil
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// CloseRoom 销毁单个房间
func (m *RoomManager) CloseRoom(id string) {
	m.mu.Lock()
	r, ok := m.rooms[id]
	delete(m.rooms, id)
	m.mu.Unlock()
	if ok {
		r.Close()
	}
}

// Close 销毁所有房间
func (m *RoomManager) Close() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
}
