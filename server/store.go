package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// BestScoreKey 最高分在存储中的固定键
const BestScoreKey = "snake-best-score"

// FileStore 以 JSON 文件保存的键值存储，每个键一个整数。
// 写入先落临时文件再 rename，调用返回时新值已完整可见。
type FileStore struct {
	mu     sync.Mutex
	path   string
	key    string
	cached bool // 同一实例内以内存值为准，避免每次 Tick 读文件
	best   int
}

// NewFileStore 文件不存在时在第一次写入时创建
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, key: BestScoreKey}
}

// Best 读取失败（缺失、损坏）一律按 0 处理
func (s *FileStore) Best() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached {
		return s.best
	}
	s.cached = true
	vals, err := s.load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			Log.Warnw("best score unreadable, using 0", "path", s.path, "err", err)
		}
		return 0
	}
	s.best = max(vals[s.key], 0)
	return s.best
}

// SetBest 同步写入
func (s *FileStore) SetBest(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, err := s.load()
	if err != nil {
		vals = make(map[string]int)
	}
	vals[s.key] = n
	s.best, s.cached = n, true
	if err := s.save(vals); err != nil {
		Log.Errorw("persist best score", "path", s.path, "err", err)
	}
}

func (s *FileStore) load() (map[string]int, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	vals := make(map[string]int)
	if err := json.Unmarshal(b, &vals); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return vals, nil
}

func (s *FileStore) save(vals map[string]int) error {
	b, err := json.Marshal(vals)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".best-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
