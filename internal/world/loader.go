package world

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/annel0/voxel-world/internal/vec"
)

// generationTask – отложенная генерация одного чанка
type generationTask struct {
	chunk     *Chunk
	cancelled bool
}

// loader – очередь отложенной генерации, которую цикл кадров разбирает
// в свободное время. Работает в одном потоке с миром.
type loader struct {
	queue   []*generationTask
	byChunk map[vec.Vec2]*generationTask
	limiter *rate.Limiter // nil – без ограничения частоты
}

func newLoader(limiter *rate.Limiter) *loader {
	return &loader{
		byChunk: make(map[vec.Vec2]*generationTask),
		limiter: limiter,
	}
}

// enqueue ставит чанк в очередь
func (l *loader) enqueue(c *Chunk) {
	task := &generationTask{chunk: c}
	l.queue = append(l.queue, task)
	l.byChunk[c.Coords()] = task
}

// cancel отменяет ожидающую генерацию чанка. Возвращает true, если задача была.
func (l *loader) cancel(coords vec.Vec2) bool {
	task, ok := l.byChunk[coords]
	if !ok {
		return false
	}
	task.cancelled = true
	delete(l.byChunk, coords)
	return true
}

// pending возвращает количество неотменённых задач
func (l *loader) pending() int {
	return len(l.byChunk)
}

// drain выполняет задачи, пока не кончится бюджет времени или лимит частоты.
// budget <= 0 означает «без ограничения по времени». Возвращает число генераций.
func (l *loader) drain(ctx context.Context, budget time.Duration, generate func(*Chunk)) int {
	start := time.Now()
	done := 0

	for len(l.queue) > 0 {
		if ctx.Err() != nil {
			break
		}

		task := l.queue[0]
		if task.cancelled {
			l.queue = l.queue[1:]
			continue
		}

		if l.limiter != nil && !l.limiter.Allow() {
			break
		}

		l.queue = l.queue[1:]
		delete(l.byChunk, task.chunk.Coords())
		generate(task.chunk)
		done++

		if budget > 0 && time.Since(start) >= budget {
			break
		}
	}

	if len(l.queue) == 0 {
		l.queue = nil
	}
	return done
}

// clear отменяет все задачи
func (l *loader) clear() {
	for coords := range l.byChunk {
		l.cancel(coords)
	}
	l.queue = nil
}
