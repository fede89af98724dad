package atomic_float

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAtomicFloat64(t *testing.T) {
	Convey("When AtomicAdd is called", t, func() {
		Convey("When multiple writers add to the value concurrently", func() {
			af := NewAtomicFloat64(0)
			numOps := 3000
			numWriters := 200

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters)
			adder := func() {
				defer wg.Done()
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = af.AtomicAdd(1.0) {
					}
				}
			}

			for i := 0; i < numWriters; i++ {
				go adder()
			}
			close(start)
			wg.Wait()
			So(af.AtomicRead(), ShouldEqual, float64(numOps*numWriters))
		})

		Convey("When writers increment and decrement concurrently", func() {
			af := NewAtomicFloat64(50)
			numOps := 3000
			numWriters := 100

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(numWriters * 2)
			worker := func(addend float64) {
				defer wg.Done()
				<-start
				for i := 0; i < numOps; i++ {
					for succeeded := false; !succeeded; _, succeeded = af.AtomicAdd(addend) {
					}
				}
			}

			for i := 0; i < numWriters; i++ {
				go worker(1)
				go worker(-1)
			}
			close(start)
			wg.Wait()
			So(af.AtomicRead(), ShouldEqual, 50.0)
		})
	})

	Convey("When AtomicClampAdd is called", t, func() {
		battery := NewAtomicFloat64(10)

		Convey("The value never drops below the floor", func() {
			So(battery.AtomicClampAdd(-25, 0, 100), ShouldEqual, 0)
			So(battery.AtomicRead(), ShouldEqual, 0)
		})

		Convey("The value never exceeds the ceiling", func() {
			So(battery.AtomicClampAdd(250, 0, 100), ShouldEqual, 100)
		})

		Convey("Concurrent drains stop at the floor", func() {
			wg := sync.WaitGroup{}
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					battery.AtomicClampAdd(-1, 0, 100)
				}()
			}
			wg.Wait()
			So(battery.AtomicRead(), ShouldEqual, 0)
		})
	})

	Convey("AtomicSet overwrites the value", t, func() {
		af := NewAtomicFloat64(1)
		af.AtomicSet(42.5)
		So(af.AtomicRead(), ShouldEqual, 42.5)
	})
}
