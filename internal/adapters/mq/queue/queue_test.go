package queue_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/supportxp/internal/adapters/mq/queue"
	"github.com/okian/supportxp/internal/domain/model"
)

func submission(id string) model.ActivitySubmission {
	return model.ActivitySubmission{
		ID:     id,
		UserID: "agent-1",
		Activity: model.ActivityData{
			Type:               model.ActivityTicketCompletion,
			ScenarioDifficulty: model.DifficultyStarter,
		},
	}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity two", t, func() {
		var depth atomic.Int64
		q := queue.NewInMemoryQueue(queue.WithCapacity(2), queue.WithDepthHook(func(n int) { depth.Store(int64(n)) }))

		Convey("Then it starts empty", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.Cap(), ShouldEqual, 2)
		})

		Convey("When submissions are enqueued", func() {
			So(q.Enqueue(ctx, submission("s1")), ShouldBeNil)
			So(q.Enqueue(ctx, submission("s2")), ShouldBeNil)

			Convey("Then they come out in order", func() {
				So(depth.Load(), ShouldEqual, 2)
				So((<-q.Dequeue()).ID, ShouldEqual, "s1")
				So((<-q.Dequeue()).ID, ShouldEqual, "s2")
				So(q.Len(), ShouldEqual, 0)
				So(depth.Load(), ShouldEqual, 0)
			})

			Convey("And a third is rejected without blocking", func() {
				err := q.Enqueue(ctx, submission("s3"))
				So(errors.Is(err, queue.ErrFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(q.Enqueue(cctx, submission("s1")), ShouldNotBeNil)
			So(q.Len(), ShouldEqual, 0)
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, submission("s1")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then intake stops but queued work drains", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, submission("s2")), queue.ErrClosed), ShouldBeTrue)
				s, ok := <-q.Dequeue()
				So(ok, ShouldBeTrue)
				So(s.ID, ShouldEqual, "s1")
				_, ok = <-q.Dequeue()
				So(ok, ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})

	Convey("Given concurrent producers and a consumer", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		var wg sync.WaitGroup
		for p := 0; p < 10; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = q.Enqueue(ctx, submission(fmt.Sprintf("s-%d-%d", p, i)))
				}
			}(p)
		}
		wg.Wait()
		So(q.Close(), ShouldBeNil)

		Convey("Then every submission is received once", func() {
			seen := map[string]bool{}
			for s := range q.Dequeue() {
				So(seen[s.ID], ShouldBeFalse)
				seen[s.ID] = true
			}
			So(seen, ShouldHaveLength, 500)
		})
	})
}
