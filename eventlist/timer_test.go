package eventlist_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jandejongh/jsimulation/eventlist"
)

var _ = Describe("Timer", func() {

	It("invokes OnSchedule after enrolling the expiration event", func() {
		list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(2.0))
		timer := eventlist.NewTimer("t")
		var scheduledAt float64 = -1
		timer.OnSchedule = func(time float64) { scheduledAt = time }

		Expect(timer.Schedule(3.0, list)).To(Succeed())
		Expect(scheduledAt).To(Equal(2.0))
		Expect(timer.Scheduled()).To(BeTrue())
	})

	It("rejects a negative delay", func() {
		list := eventlist.NewIOEL()
		timer := eventlist.NewTimer("t")
		err := timer.Schedule(-1.0, list)
		var argErr *eventlist.IllegalArgumentError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(argErr))
	})

	It("rejects an infinite delay", func() {
		list := eventlist.NewIOEL()
		timer := eventlist.NewTimer("t")
		err := timer.Schedule(math.Inf(1), list)
		var argErr *eventlist.IllegalArgumentError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(argErr))
	})

	It("rejects scheduling on a list whose clock is infinite", func() {
		list := eventlist.NewIOEL()
		timer := eventlist.NewTimer("t")
		err := timer.Schedule(1.0, list)
		var argErr *eventlist.IllegalArgumentError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(argErr))
	})

	It("rejects a nil list", func() {
		timer := eventlist.NewTimer("t")
		err := timer.Schedule(1.0, nil)
		var argErr *eventlist.IllegalArgumentError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(argErr))
	})

	It("rejects scheduling an already-scheduled timer", func() {
		list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(0))
		timer := eventlist.NewTimer("t")
		Expect(timer.Schedule(5.0, list)).To(Succeed())

		err := timer.Schedule(1.0, list)
		var stateErr *eventlist.IllegalStateError
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(stateErr))
	})

	It("cancel before expiration removes the event and invokes OnCancel", func() {
		list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(0))
		timer := eventlist.NewTimer("t")
		var canceledAt float64 = -1
		timer.OnCancel = func(time float64) { canceledAt = time }

		Expect(timer.Schedule(10.0, list)).To(Succeed())
		Expect(list.Len()).To(Equal(1))

		timer.Cancel()
		Expect(canceledAt).To(Equal(0.0))
		Expect(timer.Scheduled()).To(BeFalse())
		Expect(list.Len()).To(Equal(0))
	})

	It("cancel on an idle timer is a no-op and does not invoke OnCancel", func() {
		timer := eventlist.NewTimer("t")
		called := false
		timer.OnCancel = func(float64) { called = true }

		timer.Cancel()
		Expect(called).To(BeFalse())
	})

	It("can be rescheduled immediately from within OnExpire", func() {
		list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(0))
		timer := eventlist.NewTimer("t")
		fireCount := 0
		timer.OnExpire = func(time float64) {
			fireCount++
			if fireCount < 3 {
				Expect(timer.Schedule(1.0, list)).To(Succeed())
			}
		}

		Expect(timer.Schedule(1.0, list)).To(Succeed())
		Expect(list.Run()).To(Succeed())

		Expect(fireCount).To(Equal(3))
		Expect(list.GetTime()).To(Equal(3.0))
	})
})
