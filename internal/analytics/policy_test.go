package analytics

import (
	"time"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spendlens/spendlens/internal/lineitem"
)

var _ = ginkgo.Describe("buildReturnEligibility", func() {
	var (
		now     time.Time
		records []lineitem.Record
		result  ReturnEligibility
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	})

	ginkgo.JustBeforeEach(func() {
		result = buildReturnEligibility(records, now)
	})

	ginkgo.When("an electronics item is inside the 90-day window", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 30)},
			}
		})

		ginkgo.It("should report limited status with days remaining", func() {
			Expect(result.All).To(HaveLen(1))
			Expect(result.All[0].Status).To(Equal(StatusLimited))
			Expect(result.All[0].DaysSincePurchase).To(Equal(30))
			Expect(result.All[0].DaysRemaining).To(Equal(60))
		})

		ginkgo.It("should count it as returnable", func() {
			Expect(result.Returnable).To(HaveLen(1))
			Expect(result.TotalPotentialRefund).To(Equal(500.0))
			Expect(result.TotalReturnableItems).To(Equal(1.0))
		})
	})

	ginkgo.When("fourteen days or fewer remain", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 76)},
			}
		})

		ginkgo.It("should report urgent status", func() {
			Expect(result.All[0].Status).To(Equal(StatusUrgent))
			Expect(result.All[0].DaysRemaining).To(Equal(14))
			Expect(result.Urgent).To(HaveLen(1))
		})
	})

	ginkgo.When("fifteen days remain", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 75)},
			}
		})

		ginkgo.It("should report limited status", func() {
			Expect(result.All[0].Status).To(Equal(StatusLimited))
			Expect(result.Urgent).To(BeEmpty())
		})
	})

	ginkgo.When("the 90-day window has closed", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 91)},
			}
		})

		ginkgo.It("should report expired status", func() {
			Expect(result.All[0].Status).To(Equal(StatusExpired))
			Expect(result.Expired).To(HaveLen(1))
		})

		ginkgo.It("should exclude it from the returnable totals", func() {
			Expect(result.Returnable).To(BeEmpty())
			Expect(result.TotalPotentialRefund).To(Equal(0.0))
			Expect(result.TotalReturnableItems).To(Equal(0.0))
		})

		ginkgo.It("should still include it in the department grouping", func() {
			Expect(result.ByDepartment).To(HaveLen(1))
			Expect(result.ByDepartment[0].Department).To(Equal("19"))
			Expect(result.ByDepartment[0].TotalRefund).To(Equal(500.0))
		})
	})

	ginkgo.When("exactly ninety days have passed", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 90)},
			}
		})

		ginkgo.It("should report expired status", func() {
			Expect(result.All[0].Status).To(Equal(StatusExpired))
		})
	})

	ginkgo.When("a grocery item is past ninety days", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "m1", Name: "Milk", Department: "31", Quantity: 1, UnitPrice: 5, Date: daysAgo(now, 100)},
			}
		})

		ginkgo.It("should report anytime status regardless of age", func() {
			Expect(result.All[0].Status).To(Equal(StatusAnytime))
			Expect(result.All[0].Policy).To(Equal(PolicyStandard))
			Expect(result.Returnable).To(HaveLen(1))
		})
	})

	ginkgo.When("the department takes no returns", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "w1", Name: "Wine", Department: "96", Quantity: 2, UnitPrice: 15, Date: daysAgo(now, 5)},
			}
		})

		ginkgo.It("should exclude the item entirely", func() {
			Expect(result.All).To(BeEmpty())
			Expect(result.ByDepartment).To(BeEmpty())
		})
	})

	ginkgo.When("an item was fully returned", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 10)},
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: -1, UnitPrice: 500, Date: daysAgo(now, 5)},
			}
		})

		ginkgo.It("should exclude the item entirely", func() {
			Expect(result.All).To(BeEmpty())
		})
	})

	ginkgo.When("an item was partially returned", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "s1", Name: "Socks", Department: "41", Quantity: 3, UnitPrice: 8, Date: daysAgo(now, 10)},
				{SKU: "s1", Name: "Socks", Department: "41", Quantity: -1, UnitPrice: 8, Date: daysAgo(now, 5)},
			}
		})

		ginkgo.It("should evaluate the unreturned remainder", func() {
			Expect(result.All).To(HaveLen(1))
			Expect(result.All[0].NetQuantity).To(Equal(2.0))
			Expect(result.All[0].RefundEstimate).To(Equal(16.0))
		})
	})

	ginkgo.When("an item was repurchased at a new price", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 80)},
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 600, Date: daysAgo(now, 10)},
			}
		})

		ginkgo.It("should window and price from the most recent purchase", func() {
			Expect(result.All).To(HaveLen(1))
			Expect(result.All[0].DaysSincePurchase).To(Equal(10))
			Expect(result.All[0].RefundEstimate).To(Equal(1200.0))
			Expect(result.All[0].Status).To(Equal(StatusLimited))
		})
	})

	ginkgo.When("the purchase has no date", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500},
			}
		})

		ginkgo.It("should treat the purchase as made today", func() {
			Expect(result.All).To(HaveLen(1))
			Expect(result.All[0].DaysSincePurchase).To(Equal(0))
			Expect(result.All[0].DaysRemaining).To(Equal(90))
			Expect(result.All[0].Status).To(Equal(StatusLimited))
		})
	})

	ginkgo.When("statuses and refunds mix", func() {
		ginkgo.BeforeEach(func() {
			records = []lineitem.Record{
				{SKU: "m1", Name: "Milk", Department: "31", Quantity: 1, UnitPrice: 5, Date: daysAgo(now, 3)},
				{SKU: "tv1", Name: "TV", Department: "19", Quantity: 1, UnitPrice: 500, Date: daysAgo(now, 95)},
				{SKU: "c1", Name: "Couch", Department: "62", Quantity: 1, UnitPrice: 900, Date: daysAgo(now, 85)},
				{SKU: "w1", Name: "Watch", Department: "23", Quantity: 1, UnitPrice: 200, Date: daysAgo(now, 88)},
			}
		})

		ginkgo.It("should order urgent, limited, anytime, expired", func() {
			Expect(result.All).To(HaveLen(4))
			Expect(result.All[0].Status).To(Equal(StatusUrgent))
			Expect(result.All[1].Status).To(Equal(StatusUrgent))
			Expect(result.All[2].Status).To(Equal(StatusAnytime))
			Expect(result.All[3].Status).To(Equal(StatusExpired))
		})

		ginkgo.It("should break status ties by refund descending", func() {
			Expect(result.All[0].Name).To(Equal("Couch"))
			Expect(result.All[1].Name).To(Equal("Watch"))
		})

		ginkgo.It("should total refunds over non-expired entries only", func() {
			Expect(result.TotalPotentialRefund).To(Equal(1105.0))
			Expect(result.TotalReturnableItems).To(Equal(3.0))
		})
	})
})
