package model_test

import (
	"errors"
	"testing"

	"github.com/circlemate/matchmaker/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProfile_Validate(t *testing.T) {
	Convey("Given profiles with various shapes", t, func() {
		Convey("When every field is present", func() {
			p := model.Profile{ID: "u1", Interests: []string{"Coffee"}, Communities: []string{}}

			Convey("Then validation passes", func() {
				So(p.Validate(), ShouldBeNil)
			})
		})

		Convey("When the id is blank", func() {
			p := model.Profile{ID: "  ", Interests: []string{}, Communities: []string{}}

			Convey("Then it is rejected", func() {
				err := p.Validate()
				So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "missing id")
			})
		})

		Convey("When interests are missing", func() {
			p := model.Profile{ID: "u1", Communities: []string{}}

			Convey("Then it is rejected with the field name", func() {
				err := p.Validate()
				So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "missing interests")
			})
		})

		Convey("When communities are missing", func() {
			p := model.Profile{ID: "u1", Interests: []string{}}

			Convey("Then it is rejected with the field name", func() {
				err := p.Validate()
				So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "missing communities")
			})
		})
	})
}

func TestProfile_Clone(t *testing.T) {
	Convey("Given a profile", t, func() {
		p := model.Profile{ID: "u1", Interests: []string{"A"}, Communities: []string{"X"}}

		Convey("When the clone is mutated", func() {
			c := p.Clone()
			c.Interests[0] = "B"
			c.Communities[0] = "Y"

			Convey("Then the original is untouched", func() {
				So(p.Interests[0], ShouldEqual, "A")
				So(p.Communities[0], ShouldEqual, "X")
			})
		})

		Convey("When a missing field is cloned", func() {
			c := model.Profile{ID: "u2"}.Clone()

			Convey("Then it stays missing", func() {
				So(c.Interests, ShouldBeNil)
				So(c.Communities, ShouldBeNil)
			})
		})
	})
}

func TestTierFor(t *testing.T) {
	Convey("Given compatibility scores around the tier boundaries", t, func() {
		So(model.TierFor(100), ShouldEqual, model.TierHigh)
		So(model.TierFor(80), ShouldEqual, model.TierHigh)
		So(model.TierFor(79), ShouldEqual, model.TierGood)
		So(model.TierFor(60), ShouldEqual, model.TierGood)
		So(model.TierFor(59), ShouldEqual, model.TierLow)
		So(model.TierFor(0), ShouldEqual, model.TierLow)
	})
}
