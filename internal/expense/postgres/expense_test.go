package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	expenseDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/expense"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store/storetest"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
	"github.com/frahmantamala/couture-bookkeeping/internal/expense"
	expensePostgres "github.com/frahmantamala/couture-bookkeeping/internal/expense/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestExpensePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Postgres Suite")
}

var _ = Describe("Expense Repository", func() {
	var (
		ctx  context.Context
		repo expense.RepositoryAPI
	)

	newExpense := func(id string, procurementID *string) *expenseDatamodel.Expense {
		return &expenseDatamodel.Expense{
			ID:                id,
			Description:       "Courier",
			Amount:            6.5,
			Currency:          "USD",
			Category:          "procurement_related",
			SubmittedByUserID: "u-1",
			SubmissionDate:    time.Now().UTC(),
			Status:            string(workflow.StatusApproved),
			ProcurementID:     procurementID,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		db, err := storetest.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())
		repo = expensePostgres.NewExpenseRepository(db)
	})

	It("should allow many expenses without a procurement", func() {
		Expect(repo.Create(ctx, newExpense("e-1", nil))).To(Succeed())
		Expect(repo.Create(ctx, newExpense("e-2", nil))).To(Succeed())

		rows, err := repo.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
	})

	It("should keep one expense per procurement", func() {
		procurementID := "p-1"
		Expect(repo.Create(ctx, newExpense("e-1", &procurementID))).To(Succeed())

		err := repo.Create(ctx, newExpense("e-2", &procurementID))
		Expect(err).To(Equal(internal.ErrExpenseAlreadyRecorded))

		got, err := repo.GetByProcurementID(ctx, "p-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal("e-1"))
	})

	It("should map missing rows to ErrExpenseNotFound", func() {
		_, err := repo.GetByID(ctx, "missing")
		Expect(err).To(Equal(internal.ErrExpenseNotFound))

		_, err = repo.GetByProcurementID(ctx, "missing")
		Expect(err).To(Equal(internal.ErrExpenseNotFound))

		err = repo.UpdateStatus(ctx, "missing", workflow.StatusRejected, "u-2", time.Now())
		Expect(err).To(Equal(internal.ErrExpenseNotFound))
	})

	It("should record the reviewer with the new status", func() {
		Expect(repo.Create(ctx, newExpense("e-1", nil))).To(Succeed())
		Expect(repo.UpdateStatus(ctx, "e-1", workflow.StatusRejected, "u-2", time.Now().UTC())).To(Succeed())

		got, err := repo.GetByID(ctx, "e-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal("rejected"))
		Expect(*got.ReviewedByUserID).To(Equal("u-2"))
		Expect(got.ReviewDate).NotTo(BeNil())
	})
})
