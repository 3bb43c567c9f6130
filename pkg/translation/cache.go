package translation

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache 翻译缓存接口，值是去掉首尾空白后的译文
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Stats() CacheStats
}

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int64
}

// MemoryCache 内存缓存实现
type MemoryCache struct {
	data  map[string]cacheEntry
	mutex sync.Mutex
	stats CacheStats
}

// cacheEntry 缓存条目
type cacheEntry struct {
	Value      string    `json:"value"`
	SourceLang string    `json:"source_lang,omitempty"`
	TargetLang string    `json:"target_lang,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]cacheEntry),
	}
}

// Get 获取缓存
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.data[key]
	if !exists {
		c.stats.Misses++
		return "", false
	}
	c.stats.Hits++
	return entry.Value, true
}

// Set 设置缓存
func (c *MemoryCache) Set(key, value string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheEntry{
		Value:     value,
		Timestamp: time.Now(),
	}
	c.stats.Size = int64(len(c.data))
	return nil
}

// Stats 获取缓存统计信息
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}

// FileCache 文件缓存实现，每个键一个 JSON 文件
type FileCache struct {
	basePath string
	memory   *MemoryCache // 二级缓存
	stats    CacheStats
	mutex    sync.Mutex
}

// NewFileCache 创建文件缓存
func NewFileCache(basePath string) (*FileCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", basePath, err)
	}
	return &FileCache{
		basePath: basePath,
		memory:   NewMemoryCache(),
	}, nil
}

// getFilePath 获取缓存文件路径，键本身已经是 md5 摘要
func (c *FileCache) getFilePath(key string) string {
	return filepath.Join(c.basePath, key+".cache")
}

// Get 获取缓存
func (c *FileCache) Get(key string) (string, bool) {
	// 先检查内存缓存
	if value, ok := c.memory.Get(key); ok {
		c.hit()
		return value, true
	}

	data, err := os.ReadFile(c.getFilePath(key))
	if err != nil {
		c.miss()
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.miss()
		return "", false
	}

	_ = c.memory.Set(key, entry.Value)
	c.hit()
	return entry.Value, true
}

// Set 设置缓存
func (c *FileCache) Set(key, value string) error {
	if err := c.memory.Set(key, value); err != nil {
		return err
	}

	data, err := json.Marshal(cacheEntry{
		Value:     value,
		Timestamp: time.Now(),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.getFilePath(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	c.mutex.Lock()
	c.stats.Size++
	c.mutex.Unlock()
	return nil
}

// Stats 获取缓存统计信息，内存层的命中已计入文件层
func (c *FileCache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.stats
}

func (c *FileCache) hit() {
	c.mutex.Lock()
	c.stats.Hits++
	c.mutex.Unlock()
}

func (c *FileCache) miss() {
	c.mutex.Lock()
	c.stats.Misses++
	c.mutex.Unlock()
}

// CacheKey 生成缓存键：md5(源语言|目标语言|模型|文本)
func CacheKey(sourceLang, targetLang, model, text string) string {
	keyData := fmt.Sprintf("src:%s|tgt:%s|model:%s|text:%s", sourceLang, targetLang, model, text)
	return fmt.Sprintf("%x", md5.Sum([]byte(keyData)))
}

// NewCache 根据配置创建缓存实例
func NewCache(useCache bool, cacheDir string) (Cache, error) {
	if !useCache {
		return nil, nil
	}
	if cacheDir != "" {
		fc, err := NewFileCache(cacheDir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
	return NewMemoryCache(), nil
}
