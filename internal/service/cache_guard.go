package service

import "sync"

// fillGuard 防止读路径把已被写路径失效的旧数据重新写回缓存。
// 读方在查询数据库前取 generation，写缓存前确认期间没有写入发生；
// 写方在提交后递增 generation 并失效缓存，两段操作互斥。
// 只覆盖单进程内的并发，多实例部署依赖缓存 TTL 兜底。
type fillGuard struct {
	mu  sync.RWMutex
	gen uint64
}

func (g *fillGuard) generation() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.gen
}

// fill runs set only if no write completed since gen was taken.
func (g *fillGuard) fill(gen uint64, set func()) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.gen != gen {
		return false
	}
	set()
	return true
}

// written marks a committed write and runs invalidate under the same lock.
func (g *fillGuard) written(invalidate func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	invalidate()
}
