package lifecycle_test

import (
	"time"

	"archon/domain/lifecycle"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolve", func() {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	It("should resolve to Pending when dates are absent", func() {
		Expect(lifecycle.Resolve(now, "", "", "")).To(Equal(lifecycle.StatusPending))
		Expect(lifecycle.Resolve(now, "2025-01-01", "", "")).To(Equal(lifecycle.StatusPending))
		Expect(lifecycle.Resolve(now, "", "2025-12-31", "")).To(Equal(lifecycle.StatusPending))
	})

	It("should let a manual inactive override beat all date logic", func() {
		Expect(lifecycle.Resolve(now, "2025-01-01", "2025-12-31", lifecycle.ManualStatusInactive)).
			To(Equal(lifecycle.StatusInactive))
		Expect(lifecycle.Resolve(now, "", "", lifecycle.ManualStatusInactive)).
			To(Equal(lifecycle.StatusInactive))
	})

	It("should be Active inside the date window", func() {
		Expect(lifecycle.Resolve(now, "2025-01-01", "2025-12-31", "")).To(Equal(lifecycle.StatusActive))
	})

	It("should be Active exactly at the start date", func() {
		startOfDay := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		Expect(lifecycle.Resolve(startOfDay, "2025-06-15", "2025-12-31", "")).To(Equal(lifecycle.StatusActive))
	})

	It("should stay Active through the whole end date", func() {
		Expect(lifecycle.Resolve(now, "2025-01-01", "2025-06-15T23:59:59", "")).To(Equal(lifecycle.StatusActive))
	})

	It("should be Expired after the end date", func() {
		Expect(lifecycle.Resolve(now, "2025-01-01", "2025-03-31", "")).To(Equal(lifecycle.StatusExpired))
	})

	It("should be Pending before the start date", func() {
		Expect(lifecycle.Resolve(now, "2025-09-01", "2025-12-31", "")).To(Equal(lifecycle.StatusPending))
	})

	It("should accept RFC3339 dates with a trailing Z", func() {
		Expect(lifecycle.Resolve(now, "2025-01-01T00:00:00Z", "2025-12-31T00:00:00Z", "")).
			To(Equal(lifecycle.StatusActive))
	})

	It("should degrade malformed dates to Pending instead of failing", func() {
		Expect(lifecycle.Resolve(now, "not-a-date", "2025-12-31", "")).To(Equal(lifecycle.StatusPending))
		Expect(lifecycle.Resolve(now, "2025-01-01", "31/12/2025", "")).To(Equal(lifecycle.StatusPending))
	})
})

var _ = Describe("ParseProjectDate", func() {
	It("should parse the accepted layouts", func() {
		d, err := lifecycle.ParseProjectDate("2025-06-15")
		Expect(err).To(BeNil())
		Expect(d).To(Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))

		d, err = lifecycle.ParseProjectDate("2025-06-15T08:30:00")
		Expect(err).To(BeNil())
		Expect(d).To(Equal(time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)))

		d, err = lifecycle.ParseProjectDate("2025-06-15T08:30:00Z")
		Expect(err).To(BeNil())
		Expect(d).To(Equal(time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)))
	})

	It("should return a typed error for garbage input", func() {
		_, err := lifecycle.ParseProjectDate("15.06.2025")
		Expect(err).ToNot(BeNil())

		parseErr, ok := err.(*lifecycle.ErrUnparsableDate)
		Expect(ok).To(BeTrue())
		Expect(parseErr.Value).To(Equal("15.06.2025"))
	})
})
