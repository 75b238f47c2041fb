package memory

import (
	"context"
	"time"
)

// loadTimeout - предел для загрузки, отвязанной от контекста первого вызывающего.
const loadTimeout = 30 * time.Second

// generations - поколения ключей, по которым сейчас идут чтения.
// Запись живёт, пока есть хотя бы один вызывающий внутри GetOrLoad,
// поэтому размер карты ограничен числом одновременных загрузок.
// Не потокобезопасен: блокировку держит владелец.
type generations struct {
	m map[string]*generation
}

type generation struct {
	gen  uint64
	refs int
}

func newGenerations() *generations {
	return &generations{m: make(map[string]*generation)}
}

// acquire - регистрирует вызывающего и возвращает текущее поколение ключа.
func (g *generations) acquire(key string) uint64 {
	e, ok := g.m[key]
	if !ok {
		e = &generation{}
		g.m[key] = e
	}
	e.refs++
	return e.gen
}

func (g *generations) release(key string) {
	e, ok := g.m[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(g.m, key)
	}
}

// bump - новое поколение; без активных чтений записи нет и сдвигать нечего.
func (g *generations) bump(key string) {
	if e, ok := g.m[key]; ok {
		e.gen++
	}
}

// current - false, если поколение сменилось после acquire.
func (g *generations) current(key string, gen uint64) bool {
	e, ok := g.m[key]
	return ok && e.gen == gen
}

func (g *generations) len() int { return len(g.m) }

// detach - контекст загрузки без отмены вызывающего, но с собственным пределом.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
}
