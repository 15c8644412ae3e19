package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ellavondegurechaff/slotbot/slotbot/logger"
)

var ErrShutdownTimeout = errors.New("background processes still running after shutdown timeout")

// BackgroundProcessManager owns the sweep and maintenance loops and stops them together.
type BackgroundProcessManager struct {
	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	procs map[string]*ProcessInfo
}

type ProcessInfo struct {
	Name        string
	Description string
	StartedAt   time.Time
	Panics      int

	stop context.CancelFunc
}

func NewBackgroundProcessManager() *BackgroundProcessManager {
	root, cancel := context.WithCancel(context.Background())
	return &BackgroundProcessManager{
		root:   root,
		cancel: cancel,
		procs:  make(map[string]*ProcessInfo),
	}
}

// StartProcess runs fn in its own goroutine under name, replacing any loop
// already registered with that name. A panic in fn is logged and ends the loop.
func (m *BackgroundProcessManager) StartProcess(name, description string, fn func(ctx context.Context)) {
	ctx, stop := context.WithCancel(m.root)
	info := &ProcessInfo{
		Name:        name,
		Description: description,
		StartedAt:   time.Now(),
		stop:        stop,
	}

	m.mu.Lock()
	if prev, ok := m.procs[name]; ok {
		prev.stop()
		logger.LogSystem("Replacing background process", slog.String("process", name))
	}
	m.procs[name] = info
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.release(info)
		defer func() {
			if r := recover(); r != nil {
				m.mu.Lock()
				info.Panics++
				m.mu.Unlock()
				logger.LogError("Background process panicked", fmt.Errorf("panic: %v", r),
					slog.String("process", name))
			}
		}()

		logger.LogSystem("Background process started",
			slog.String("process", name),
			slog.String("description", description))
		fn(ctx)
		logger.LogSystem("Background process ended",
			slog.String("process", name),
			slog.Duration("ran_for", time.Since(info.StartedAt)))
	}()
}

func (m *BackgroundProcessManager) release(info *ProcessInfo) {
	info.stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.procs[info.Name]; ok && cur == info {
		delete(m.procs, info.Name)
	}
}

// Shutdown cancels every process and waits up to timeout for them to return.
func (m *BackgroundProcessManager) Shutdown(timeout time.Duration) error {
	logger.LogSystem("Stopping background processes", slog.Int("running", m.GetProcessCount()))
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w (%s, %d left)", ErrShutdownTimeout, timeout, m.GetProcessCount())
	}
}

func (m *BackgroundProcessManager) GetProcessCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.procs)
}

// ListProcesses returns a snapshot of the running processes ordered by name.
func (m *BackgroundProcessManager) ListProcesses() []ProcessInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ProcessInfo, 0, len(m.procs))
	for _, p := range m.procs {
		cp := *p
		cp.stop = nil
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
