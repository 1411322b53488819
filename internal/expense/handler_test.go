package expense_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store/storetest"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/expense"
	expensePostgres "github.com/frahmantamala/couture-bookkeeping/internal/expense/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Expense Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		db, err := storetest.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())

		svc := expense.NewService(expensePostgres.NewExpenseRepository(db), slog.New(slog.NewTextHandler(io.Discard, nil)))
		h := expense.NewHandler(svc)

		reviewer := &coreuser.User{ID: "u-manager", Role: coreuser.RoleManager}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), reviewer)))
			})
		})
		router.Post("/expenses", h.SubmitExpense)
		router.Get("/expenses", h.ListExpenses)
		router.Patch("/expenses/{id}/status", h.UpdateExpenseStatus)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, reader))
		return w
	}

	created := func() expense.Expense {
		w := do(http.MethodPost, "/expenses", `{"description":"Packaging","amount":18.25}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var e expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&e)).To(Succeed())
		return e
	}

	It("should create and list expenses", func() {
		e := created()
		Expect(e.Currency).To(Equal("USD"))
		Expect(e.Category).To(Equal("general"))

		w := do(http.MethodGet, "/expenses", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var all []expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&all)).To(Succeed())
		Expect(all).To(HaveLen(1))
	})

	It("should read the new status from the query string", func() {
		e := created()

		w := do(http.MethodPatch, "/expenses/"+e.ID+"/status?status_update=approved", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var updated expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(string(updated.Status)).To(Equal("approved"))
		Expect(*updated.ReviewedByUserID).To(Equal("u-manager"))
	})

	It("should read the new status from a JSON body", func() {
		e := created()

		w := do(http.MethodPatch, "/expenses/"+e.ID+"/status", `{"status":"rejected"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"rejected"`))
	})

	It("should answer 400 for an unknown status and 404 for an unknown expense", func() {
		e := created()

		w := do(http.MethodPatch, "/expenses/"+e.ID+"/status?status_update=paid", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = do(http.MethodPatch, "/expenses/nope/status?status_update=approved", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("EXPENSE_NOT_FOUND"))
	})

	It("should answer 400 when no status is given", func() {
		e := created()

		w := do(http.MethodPatch, "/expenses/"+e.ID+"/status", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
