package eventlist_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jandejongh/jsimulation/eventlist"
)

var _ = Describe("EventList core", func() {

	Describe("construction defaults", func() {
		It("starts empty at negative infinity", func() {
			list := eventlist.NewIOEL()
			Expect(list.GetTime()).To(Equal(math.Inf(-1)))
			Expect(list.Len()).To(Equal(0))
		})

		It("honors WithDefaultResetTime", func() {
			list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(5.0))
			Expect(list.GetTime()).To(Equal(5.0))
			Expect(list.DefaultResetTime()).To(Equal(5.0))
		})
	})

	Describe("Scenario 1: two events, no actions", func() {
		It("advances the clock to the last event and fires two updates", func() {
			list := eventlist.NewIOEL()
			rec := &recordingListener{}
			list.AddListener(rec)

			e1 := eventlist.NewBaseEvent(15.8, nil, "e1")
			e2 := eventlist.NewBaseEvent(10.0, nil, "e2")
			_, err := list.Add(e1)
			Expect(err).NotTo(HaveOccurred())
			_, err = list.Add(e2)
			Expect(err).NotTo(HaveOccurred())

			Expect(list.Run()).To(Succeed())

			Expect(list.GetTime()).To(Equal(15.8))
			Expect(list.Len()).To(Equal(0))
			Expect(rec.updates).To(Equal([]float64{10.0, 15.8}))
			Expect(rec.empties).To(Equal([]float64{15.8}))
		})
	})

	Describe("Scenario 2: reset from a non-default clock", func() {
		It("reset(t) then reset() restores the configured default", func() {
			list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(5.0))

			Expect(list.ResetTo(-25.0)).To(Succeed())
			Expect(list.GetTime()).To(Equal(-25.0))

			e := eventlist.NewBaseEvent(15.8, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.Run()).To(Succeed())
			Expect(list.GetTime()).To(Equal(15.8))

			Expect(list.Reset()).To(Succeed())
			Expect(list.GetTime()).To(Equal(5.0))
			Expect(list.Len()).To(Equal(0))
		})
	})

	Describe("Scenario 3: auto-rescheduling event", func() {
		It("fires 16 times, ending at t=16", func() {
			list := eventlist.NewIOEL()
			count := 0

			var cb eventlist.Callback
			cb = func(e eventlist.Event) {
				count++
				if e.Time() < 16.0 {
					e.SetTime(e.Time() + 1)
					Expect(list.Schedule(e)).To(Succeed())
				}
			}

			first := eventlist.NewBaseEvent(1.0, cb, "ticker")
			Expect(list.Schedule(first)).To(Succeed())
			Expect(list.Run()).To(Succeed())

			Expect(count).To(Equal(16))
			Expect(list.GetTime()).To(Equal(16.0))
		})
	})

	Describe("Scenario 4: RunUntil semantics", func() {
		var (
			list *eventlist.EventList
			e10  *eventlist.BaseEvent
			e158 *eventlist.BaseEvent
		)

		BeforeEach(func() {
			list = eventlist.NewIOEL()
			e10 = eventlist.NewBaseEvent(10.0, nil, "t10")
			e158 = eventlist.NewBaseEvent(15.8, nil, "t158")
			Expect(list.Schedule(e10)).To(Succeed())
			Expect(list.Schedule(e158)).To(Succeed())
		})

		It("exclusive at 10 runs nothing", func() {
			Expect(list.RunUntil(10, false, false)).To(Succeed())
			Expect(list.Contains(e10)).To(BeTrue())
			Expect(list.Contains(e158)).To(BeTrue())
		})

		It("inclusive at 10 runs only the 10.0 event", func() {
			Expect(list.RunUntil(10, true, false)).To(Succeed())
			Expect(list.Contains(e10)).To(BeFalse())
			Expect(list.Contains(e158)).To(BeTrue())
		})

		It("inclusive at 15 (below 15.8) leaves both untouched beyond 10", func() {
			Expect(list.RunUntil(10, true, false)).To(Succeed())
			Expect(list.RunUntil(15, true, false)).To(Succeed())
			Expect(list.Contains(e158)).To(BeTrue())
		})

		It("exclusive at 20 drains the whole list", func() {
			Expect(list.RunUntil(20, false, false)).To(Succeed())
			Expect(list.Len()).To(Equal(0))
		})
	})

	Describe("Scenario 5: scheduling in the past is rejected", func() {
		It("fails with IllegalArgumentError once the clock has advanced", func() {
			list := eventlist.NewIOEL()
			e1 := eventlist.NewBaseEvent(15.8, nil, "e1")
			Expect(list.Schedule(e1)).To(Succeed())
			Expect(list.Run()).To(Succeed())

			late := eventlist.NewBaseEvent(10.0, nil, "late")
			err := list.Schedule(late)
			var argErr *eventlist.IllegalArgumentError
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(argErr))
		})
	})

	Describe("Scenario 6: timer round-trip", func() {
		It("expires at t=16 and can be rescheduled on a different list", func() {
			list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(0.0))
			timer := eventlist.NewTimer("t")
			var expiredAt float64 = -1
			timer.OnExpire = func(time float64) { expiredAt = time }

			Expect(timer.Schedule(16.0, list)).To(Succeed())
			Expect(list.Run()).To(Succeed())

			Expect(expiredAt).To(Equal(16.0))
			Expect(timer.Scheduled()).To(BeFalse())

			other := eventlist.NewIOEL(eventlist.WithDefaultResetTime(0.0))
			Expect(timer.Schedule(1.0, other)).To(Succeed())
		})
	})

	Describe("RunUntil boundaries", func() {
		It("Run on an empty list fires exactly one empty notification and leaves the clock unchanged", func() {
			list := eventlist.NewIOEL()
			rec := &recordingListener{}
			list.AddListener(rec)

			before := list.GetTime()
			Expect(list.Run()).To(Succeed())
			Expect(list.GetTime()).To(Equal(before))
			Expect(rec.empties).To(HaveLen(1))
			Expect(rec.updates).To(BeEmpty())
		})

		It("fires an update for the first event even when its time equals the clock", func() {
			list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(math.Inf(-1)))
			rec := &recordingListener{}
			list.AddListener(rec)

			e := eventlist.NewBaseEvent(math.Inf(-1), nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.RunSingleStep()).To(Succeed())

			Expect(rec.updates).To(Equal([]float64{math.Inf(-1)}))
		})

		It("run_until(end, inclusive=true, set_time=true) on an empty tail sets the clock to end", func() {
			list := eventlist.NewIOEL()
			rec := &recordingListener{}
			list.AddListener(rec)

			e := eventlist.NewBaseEvent(5.0, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.RunUntil(20.0, true, true)).To(Succeed())

			Expect(list.GetTime()).To(Equal(20.0))
			Expect(rec.updates).To(Equal([]float64{5.0, 20.0}))
		})

		It("leaves time==end events in the list when exclusive", func() {
			list := eventlist.NewIOEL()
			e := eventlist.NewBaseEvent(10.0, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.RunUntil(10.0, false, false)).To(Succeed())
			Expect(list.Contains(e)).To(BeTrue())
		})
	})

	Describe("Add/Remove/Contains invariants", func() {
		It("rejects adding the same event twice, cardinality unchanged", func() {
			list := eventlist.NewIOEL()
			e := eventlist.NewBaseEvent(1.0, nil, "e")
			ok, err := list.Add(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = list.Add(e)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(list.Len()).To(Equal(1))
		})

		It("schedule(time, event) followed by no run leaves event.Time() == time and enrolled", func() {
			list := eventlist.NewIOEL()
			e := eventlist.NewBaseEvent(0, nil, "e")
			Expect(list.ScheduleAt(7.0, e)).To(Succeed())
			Expect(e.Time()).To(Equal(7.0))
			Expect(list.Contains(e)).To(BeTrue())
		})

		It("reschedule is equivalent to remove; set time; add", func() {
			list := eventlist.NewIOEL()
			e := eventlist.NewBaseEvent(0, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.Reschedule(3.0, e)).To(Succeed())
			Expect(e.Time()).To(Equal(3.0))
			Expect(list.Contains(e)).To(BeTrue())
			Expect(list.Len()).To(Equal(1))
		})
	})

	Describe("Reentrancy guard", func() {
		It("fails with IllegalStateError on a nested Run call", func() {
			list := eventlist.NewIOEL()
			var nestedErr error
			e := eventlist.NewBaseEvent(0, func(eventlist.Event) {
				nestedErr = list.Run()
			}, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.Run()).To(Succeed())

			var stateErr *eventlist.IllegalStateError
			Expect(nestedErr).To(HaveOccurred())
			Expect(nestedErr).To(BeAssignableToTypeOf(stateErr))
		})

		It("fails with IllegalArgumentError when end is before the current clock", func() {
			list := eventlist.NewIOEL()
			e := eventlist.NewBaseEvent(10.0, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.Run()).To(Succeed())

			err := list.RunUntil(5.0, false, false)
			var argErr *eventlist.IllegalArgumentError
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(argErr))
		})
	})

	Describe("Listener fan-out dispatch", func() {
		It("reset fires to all three buckets", func() {
			list := eventlist.NewIOEL()
			fine := &recordingListener{}
			full := &plainListener{}
			resetOnly := &resetOnlyListener{}
			list.AddListener(fine)
			list.AddListener(full)
			list.AddListener(resetOnly)

			Expect(list.Reset()).To(Succeed())

			Expect(fine.resets).To(HaveLen(1))
			Expect(full.resets).To(Equal(1))
			Expect(resetOnly.resets).To(Equal(1))
		})

		It("next-event fires only to fine listeners", func() {
			list := eventlist.NewIOEL()
			fine := &recordingListener{}
			full := &plainListener{}
			list.AddListener(fine)
			list.AddListener(full)

			e := eventlist.NewBaseEvent(1.0, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.Run()).To(Succeed())

			Expect(fine.nextEvents).To(HaveLen(1))
		})

		It("deduplicates repeated registration of the same listener", func() {
			list := eventlist.NewIOEL()
			rec := &recordingListener{}
			list.AddListener(rec)
			list.AddListener(rec)

			Expect(list.Reset()).To(Succeed())
			Expect(rec.resets).To(HaveLen(1))
		})

		It("stops dispatching to a removed listener", func() {
			list := eventlist.NewIOEL()
			rec := &recordingListener{}
			list.AddListener(rec)
			list.RemoveListener(rec)

			Expect(list.Reset()).To(Succeed())
			Expect(rec.resets).To(BeEmpty())
		})
	})

	Describe("IOEL tiebreak policy", func() {
		It("processes same-time events in insertion order", func() {
			list := eventlist.NewIOEL()
			var order []int

			for i := 0; i < 5; i++ {
				idx := i
				e := eventlist.NewBaseEvent(1.0, func(eventlist.Event) {
					order = append(order, idx)
				}, "")
				Expect(list.Schedule(e)).To(Succeed())
			}
			Expect(list.Run()).To(Succeed())

			Expect(order).To(Equal([]int{0, 1, 2, 3, 4}))
		})

		It("resets the counter once the list empties between insertion bursts", func() {
			list := eventlist.NewIOEL()
			var firstBurst, secondBurst []int
			var firstDeconflicts []int64

			for i := 0; i < 3; i++ {
				idx := i
				e := eventlist.NewBaseEvent(1.0, func(eventlist.Event) {
					firstBurst = append(firstBurst, idx)
				}, "")
				Expect(list.Schedule(e)).To(Succeed())
				if i == 0 {
					firstDeconflicts = append(firstDeconflicts, e.Deconflict())
				}
			}
			Expect(list.Run()).To(Succeed())
			Expect(list.Len()).To(Equal(0))

			Expect(list.ResetTo(1.0)).To(Succeed())
			for i := 0; i < 3; i++ {
				idx := i
				e := eventlist.NewBaseEvent(1.0, func(eventlist.Event) {
					secondBurst = append(secondBurst, idx)
				}, "")
				Expect(list.Schedule(e)).To(Succeed())
				if i == 0 {
					firstDeconflicts = append(firstDeconflicts, e.Deconflict())
				}
			}
			Expect(list.Run()).To(Succeed())

			Expect(firstBurst).To(Equal([]int{0, 1, 2}))
			Expect(secondBurst).To(Equal([]int{0, 1, 2}))
			Expect(firstDeconflicts[1]).To(Equal(firstDeconflicts[0]))
		})
	})

	Describe("ROEL tiebreak policy", func() {
		It("is repeatable across runs given the same seed and insertion sequence", func() {
			buildOrder := func(seed int64) []int {
				list := eventlist.NewROEL(seed)
				var order []int
				for i := 0; i < 20; i++ {
					idx := i
					e := eventlist.NewBaseEvent(1.0, func(eventlist.Event) {
						order = append(order, idx)
					}, "")
					Expect(list.Schedule(e)).To(Succeed())
				}
				Expect(list.Run()).To(Succeed())
				return order
			}

			first := buildOrder(42)
			second := buildOrder(42)
			Expect(first).To(Equal(second))
		})

		It("allows reseeding via SetROELSeed", func() {
			list := eventlist.NewROEL(1)
			eventlist.SetROELSeed(list, 99)

			e := eventlist.NewBaseEvent(1.0, nil, "e")
			Expect(list.Schedule(e)).To(Succeed())
			Expect(list.Run()).To(Succeed())
			Expect(list.GetTime()).To(Equal(1.0))
		})
	})

	Describe("ScheduleFunc / factory fallback", func() {
		It("constructs a *BaseEvent when no factory is configured", func() {
			list := eventlist.NewIOEL()
			fired := false
			e, err := list.ScheduleFunc(3.0, func(eventlist.Event) { fired = true }, "named")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Name()).To(Equal("named"))

			Expect(list.Run()).To(Succeed())
			Expect(fired).To(BeTrue())
		})

		It("surfaces a factory error as IllegalStateError", func() {
			list := eventlist.NewIOEL(eventlist.WithFactory(
				func(time float64, cb eventlist.Callback, name string) (eventlist.Event, error) {
					return nil, &testFactoryError{}
				}))

			_, err := list.ScheduleFunc(1.0, nil, "x")
			var stateErr *eventlist.IllegalStateError
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(stateErr))
		})

		It("ScheduleNowFunc schedules at the current clock", func() {
			list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(4.0))
			e, err := list.ScheduleNowFunc(nil, "now")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Time()).To(Equal(4.0))
		})
	})

	Describe("String rendering", func() {
		It("defaults to EventList[t=<clock>]", func() {
			list := eventlist.NewIOEL(eventlist.WithDefaultResetTime(2.0))
			Expect(list.String()).To(Equal("EventList[t=2]"))
		})

		It("honors a custom renderer", func() {
			list := eventlist.NewIOEL(eventlist.WithToStringFunc(func(l *eventlist.EventList) string {
				return "custom"
			}))
			Expect(list.String()).To(Equal("custom"))
		})
	})
})

type testFactoryError struct{}

func (e *testFactoryError) Error() string { return "factory boom" }
