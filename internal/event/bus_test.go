package event

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestNewBus 测试创建新的事件总线
func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() 返回 nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() handlers map 未初始化")
	}
}

// TestSubscribeAndPublish 测试订阅和发布事件
func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	received := make(chan any, 1)
	bus.Subscribe(EventLanded, func(event any) {
		received <- event
	})

	bus.Publish(EventLanded, GroundEvent{HighestZ: 0.7})
	bus.Wait()

	select {
	case got := <-received:
		evt, ok := got.(GroundEvent)
		if !ok || evt.HighestZ != 0.7 {
			t.Errorf("handler 收到 %v, 期望 HighestZ=0.7", got)
		}
	default:
		t.Fatal("handler 未收到事件")
	}
}

// TestPublishNoSubscribers 测试发布无订阅者的事件不会 panic
func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")
	bus.Wait()

	var nilBus *Bus
	nilBus.Publish(EventLanded, nil)
}

// TestMultipleEvents 测试不同事件名称互不干扰
func TestMultipleEvents(t *testing.T) {
	bus := NewBus()
	var landed, airborne atomic.Int32

	bus.Subscribe(EventLanded, func(event any) { landed.Add(1) })
	bus.Subscribe(EventLeftGround, func(event any) { airborne.Add(1) })

	bus.Publish(EventLanded, GroundEvent{})
	bus.Publish(EventLanded, GroundEvent{})
	bus.Wait()

	if landed.Load() != 2 {
		t.Errorf("landed handler 被调用 %d 次, 期望 2 次", landed.Load())
	}
	if airborne.Load() != 0 {
		t.Error("airborne handler 不应该被调用")
	}
}

// TestUnsubscribe 测试取消订阅后不再收到事件
func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	var first, second atomic.Int32
	cancel := bus.Subscribe(EventUnstuck, func(event any) { first.Add(1) })
	bus.Subscribe(EventUnstuck, func(event any) { second.Add(1) })

	bus.Publish(EventUnstuck, GroundEvent{})
	bus.Wait()
	cancel()
	cancel()
	bus.Publish(EventUnstuck, GroundEvent{})
	bus.Wait()

	if first.Load() != 1 {
		t.Errorf("first handler 被调用 %d 次, 期望 1 次", first.Load())
	}
	if second.Load() != 2 {
		t.Errorf("second handler 被调用 %d 次, 期望 2 次", second.Load())
	}
}

// TestHandlerPanicIsRecovered 测试 handler panic 不影响其他订阅者
func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()
	var ok atomic.Bool
	bus.Subscribe(EventLanded, func(event any) { panic("boom") })
	bus.Subscribe(EventLanded, func(event any) { ok.Store(true) })

	bus.Publish(EventLanded, GroundEvent{})
	bus.Wait()

	if !ok.Load() {
		t.Fatal("正常 handler 未被调用")
	}
}

// TestConcurrentSubscribeAndPublish 测试并发订阅和发布的线程安全性
func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var count atomic.Int64

	bus.Subscribe(EventLanded, func(event any) {
		count.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(EventLanded, GroundEvent{})
		}()
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(EventLanded, func(event any) {
				count.Add(1)
			})
		}()
	}
	wg.Wait()
	bus.Wait()

	if count.Load() < 100 {
		t.Errorf("至少应该收到 100 次事件, 实际收到 %d 次", count.Load())
	}
}
