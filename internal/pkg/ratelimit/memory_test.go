package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int) (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(limit, time.Second)
	l.now = clock.Now
	return l, clock
}

func TestMemoryLimiter_Allow(t *testing.T) {
	Convey("MemoryLimiter 滚动窗口", t, func() {
		ctx := context.Background()
		l, clock := newTestLimiter(2)

		Convey("同一秒内第三次被拒绝，窗口过去后恢复", func() {
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeFalse)

			clock.Advance(1001 * time.Millisecond)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
		})

		Convey("窗口是滚动的，不按整秒对齐", func() {
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			clock.Advance(600 * time.Millisecond)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			clock.Advance(600 * time.Millisecond)
			// 第一条已过期，第二条仍在窗口内
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeFalse)
		})

		Convey("恰好落在窗口边界上的记录仍然计数", func() {
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)

			clock.Advance(time.Second)
			So(l.Allow(ctx, "u1"), ShouldBeFalse)

			clock.Advance(time.Millisecond)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
		})

		Convey("Sweep 不回收边界上的桶", func() {
			l.Allow(ctx, "u1")
			clock.Advance(time.Second)
			So(l.Sweep(), ShouldEqual, 0)
		})

		Convey("被拒绝的请求不占用额度", func() {
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			for i := 0; i < 5; i++ {
				So(l.Allow(ctx, "u1"), ShouldBeFalse)
			}
			clock.Advance(1001 * time.Millisecond)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
		})

		Convey("不同用户互不影响", func() {
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
			So(l.Allow(ctx, "u1"), ShouldBeFalse)
			So(l.Allow(ctx, "u2"), ShouldBeTrue)
			So(l.Allow(ctx, "u2"), ShouldBeTrue)
		})

		Convey("Sweep 回收空闲用户桶", func() {
			l.Allow(ctx, "u1")
			l.Allow(ctx, "u2")
			So(l.Sweep(), ShouldEqual, 0)

			clock.Advance(2 * time.Second)
			So(l.Sweep(), ShouldEqual, 2)
			So(l.Allow(ctx, "u1"), ShouldBeTrue)
		})
	})
}

func TestMemoryLimiter_Concurrent(t *testing.T) {
	Convey("并发请求同一用户时准入数不超过上限", t, func() {
		l, _ := newTestLimiter(2)
		var admitted int32
		var wg sync.WaitGroup

		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if l.Allow(context.Background(), "hot-user") {
					atomic.AddInt32(&admitted, 1)
				}
			}()
		}
		wg.Wait()

		So(atomic.LoadInt32(&admitted), ShouldEqual, 2)
	})

	Convey("并发下 Sweep 与 Allow 交错不会超额准入", t, func() {
		l, _ := newTestLimiter(2)
		var admitted int32
		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if l.Allow(context.Background(), "hot-user") {
					atomic.AddInt32(&admitted, 1)
				}
			}()
			go func() {
				defer wg.Done()
				l.Sweep()
			}()
		}
		wg.Wait()

		So(atomic.LoadInt32(&admitted), ShouldEqual, 2)
	})
}
