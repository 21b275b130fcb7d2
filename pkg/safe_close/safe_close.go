// Package safe_close 提供协调式的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose coordinates shutdown across attached goroutines: every
// attached func receives a shared close signal and reports completion
// through its done callback
// SafeClose 协调多个 goroutine 的关闭：每个挂载的函数共享同一个
// 关闭信号，并通过 done 回调上报完成
type SafeClose struct {
	mu       sync.Mutex
	closeCh  chan struct{}
	closed   bool
	closeErr error
	wg       sync.WaitGroup
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeCh: make(chan struct{}),
	}
}

// Attach registers a shutdown-aware goroutine. The func must call done()
// exactly once when it has fully stopped.
// Attach 注册一个感知关闭的 goroutine。函数停止后必须恰好调用一次 done()。
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	done := func() {
		s.wg.Done()
	}
	go f(done, s.closeCh)
}

// SendCloseSignal broadcasts the close signal; the first error wins
// SendCloseSignal 广播关闭信号；只记录第一个错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.closeErr = err
	close(s.closeCh)
}

// WaitClosed blocks until every attached goroutine reports done
// WaitClosed 阻塞直到所有挂载的 goroutine 上报完成
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeErr
}

// CloseSignal exposes the shared close channel
// CloseSignal 暴露共享的关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}
