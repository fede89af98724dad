package perception

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDetector(t *testing.T) {
	Convey("Given a seeded detector", t, func() {
		d := NewDetector(rand.New(rand.NewSource(7)))

		Convey("Detections stay within the sensor's range", func() {
			sawSome := false
			for i := 0; i < 500; i++ {
				detections := d.Detect()
				So(len(detections), ShouldBeLessThanOrEqualTo, MaxDetections)
				sawSome = sawSome || len(detections) > 0
				for _, det := range detections {
					So(Classes, ShouldContain, det.Class)
					So(det.Distance, ShouldBeBetweenOrEqual, MinDistance, MaxDistance)
					So(det.Angle, ShouldBeBetweenOrEqual, -MaxAngle, MaxAngle)
				}
			}
			So(sawSome, ShouldBeTrue)
		})

		Convey("Obstacles fall inside the map", func() {
			found := 0
			for i := 0; i < 1000; i++ {
				cells := d.DetectObstacles(10, 4)
				So(len(cells), ShouldBeLessThanOrEqualTo, 1)
				for _, c := range cells {
					found++
					So(c.X, ShouldBeBetweenOrEqual, 0, 9)
					So(c.Y, ShouldBeBetweenOrEqual, 0, 3)
				}
			}
			// Roughly 30%; loose bounds keep this independent of the seed.
			So(found, ShouldBeBetween, 150, 450)
		})

		Convey("A zero probability never reports obstacles", func() {
			d.ObstacleProbability = 0
			for i := 0; i < 100; i++ {
				So(d.DetectObstacles(10, 10), ShouldBeEmpty)
			}
		})

		Convey("An empty map never reports obstacles", func() {
			d.ObstacleProbability = 1
			So(d.DetectObstacles(0, 10), ShouldBeEmpty)
		})
	})

	Convey("Detectors with the same seed agree", t, func() {
		a := NewDetector(rand.New(rand.NewSource(11)))
		b := NewDetector(rand.New(rand.NewSource(11)))
		for i := 0; i < 20; i++ {
			So(a.Detect(), ShouldResemble, b.Detect())
			So(a.DetectObstacles(6, 6), ShouldResemble, b.DetectObstacles(6, 6))
		}
	})
}
