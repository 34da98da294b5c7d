package encoder_test

import (
	"os"
	"path/filepath"
	"testing"

	encoder "github.com/nandira/taksir/internal/domain/encoder"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBankEncode(t *testing.T) {
	Convey("Given a bank with fitted vocabularies", t, func() {
		bank := encoder.New(
			encoder.WithVocabulary("city", []string{"bandung", "jakarta", "surabaya"}),
			encoder.WithVocabulary("unit", []string{"m2", "m3", "unit"}),
		)

		Convey("When encoding a known value", func() {
			Convey("Then it should return the fitted index", func() {
				So(bank.Encode("city", "jakarta"), ShouldEqual, 1)
				So(bank.Encode("city", "bandung"), ShouldEqual, 0)
				So(bank.Encode("unit", "unit"), ShouldEqual, 2)
			})
		})

		Convey("When encoding an unseen value", func() {
			Convey("Then it should degrade to the sentinel, never fail", func() {
				So(bank.Encode("city", "medan"), ShouldEqual, encoder.Unknown)
				So(bank.Encode("city", ""), ShouldEqual, encoder.Unknown)
			})
		})

		Convey("When encoding against an unknown field", func() {
			So(bank.Encode("color", "red"), ShouldEqual, encoder.Unknown)
		})

		Convey("When the raw value carries whitespace or casing", func() {
			Convey("Then normalization matches the fitted class", func() {
				So(bank.Encode("city", "  Jakarta "), ShouldEqual, 1)
				So(bank.Encode("unit", "M2"), ShouldEqual, 0)
			})
		})

		Convey("When listing classes", func() {
			classes := bank.Classes("city")
			So(classes, ShouldResemble, []string{"bandung", "jakarta", "surabaya"})

			Convey("Then mutating the copy must not touch the bank", func() {
				classes[0] = "mutated"
				So(bank.Encode("city", "bandung"), ShouldEqual, 0)
			})
		})
	})
}

func TestBankLoad(t *testing.T) {
	Convey("Given an encoder artifact on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "encoders.json")
		artifact := `{
			"city": ["bandung", "jakarta"],
			"location": ["selatan", "utara"],
			"unit": ["m2"]
		}`
		So(os.WriteFile(path, []byte(artifact), 0o600), ShouldBeNil)

		Convey("When loading it", func() {
			bank, err := encoder.Load(path)

			Convey("Then the fitted vocabularies are usable", func() {
				So(err, ShouldBeNil)
				So(bank.Fields(), ShouldEqual, 3)
				So(bank.Encode("location", "utara"), ShouldEqual, 1)
				So(bank.Encode("location", "timur"), ShouldEqual, encoder.Unknown)
			})
		})

		Convey("When the artifact is missing", func() {
			_, err := encoder.Load(filepath.Join(dir, "nope.json"))
			So(err, ShouldWrap, encoder.ErrLoadArtifact)
		})

		Convey("When the artifact is malformed", func() {
			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("not json"), 0o600), ShouldBeNil)
			_, err := encoder.Load(bad)
			So(err, ShouldWrap, encoder.ErrBadArtifact)
		})

		Convey("When the artifact has no fields", func() {
			empty := filepath.Join(dir, "empty.json")
			So(os.WriteFile(empty, []byte("{}"), 0o600), ShouldBeNil)
			_, err := encoder.Load(empty)
			So(err, ShouldWrap, encoder.ErrBadArtifact)
		})
	})
}
