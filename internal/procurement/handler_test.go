package procurement_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/procurement"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// asUser puts the principal named by X-Test-User into the request context.
func asUser(users map[string]*coreuser.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := users[r.Header.Get("X-Test-User")]; ok {
				r = r.WithContext(auth.ContextWithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

var _ = Describe("Procurement Handler", func() {
	var (
		f      *fixture
		router chi.Router
	)

	BeforeEach(func() {
		f = newFixture()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		h := procurement.NewHandler(&transport.BaseHandler{Logger: logger}, f.service)

		router = chi.NewRouter()
		router.Use(asUser(map[string]*coreuser.User{"staff": staff, "manager": manager}))
		router.Post("/procurements", h.SubmitProcurement)
		router.Get("/procurements", h.ListProcurements)
		router.Get("/procurements/pending", h.ListPending)
		router.Post("/procurements/legacy", h.SubmitLegacyProcurement)
		router.Post("/procurements/{id}/approve", h.ApproveProcurement)
		router.Post("/procurements/{id}/reject", h.RejectProcurement)
	})

	do := func(method, path, user string, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	submitted := func() procurement.Record {
		w := do(http.MethodPost, "/procurements", "staff", `{"saree_name":"Kanjivaram","procurement_cost_inr":5000}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var record procurement.Record
		Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
		return record
	}

	It("should create a pending record", func() {
		record := submitted()
		Expect(record.ID).NotTo(BeEmpty())
		Expect(string(record.Status)).To(Equal("pending"))
		Expect(record.INRToUSDExchangeRate).To(BeZero())
	})

	It("should answer 401 without a user", func() {
		w := do(http.MethodPost, "/procurements", "", `{"saree_name":"Kanjivaram","procurement_cost_inr":5000}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should answer 400 for a malformed body", func() {
		w := do(http.MethodPost, "/procurements", "staff", `{"saree_name":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should wrap pending records", func() {
		submitted()

		w := do(http.MethodGet, "/procurements/pending", "manager", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var body procurement.PendingResponse
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.PendingProcurements).To(HaveLen(1))
	})

	It("should approve with an empty body", func() {
		record := submitted()

		w := do(http.MethodPost, "/procurements/"+record.ID+"/approve", "manager", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var approved procurement.Record
		Expect(json.NewDecoder(w.Body).Decode(&approved)).To(Succeed())
		Expect(*approved.FinalSellingPriceUSD).To(Equal(72.0))

		w = do(http.MethodPost, "/procurements/"+record.ID+"/approve", "manager", "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("PROCUREMENT_ALREADY_REVIEWED"))
	})

	It("should take the rejection reason from the query string", func() {
		record := submitted()

		w := do(http.MethodPost, "/procurements/"+record.ID+"/reject?rejection_reason=faded+border", "manager", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var rejected procurement.Record
		Expect(json.NewDecoder(w.Body).Decode(&rejected)).To(Succeed())
		Expect(*rejected.RejectionReason).To(Equal("faded border"))
		Expect(rejected.FinalSellingPriceUSD).To(BeNil())
	})

	It("should answer 404 when rejecting an unknown record", func() {
		w := do(http.MethodPost, "/procurements/nope/reject", "manager", `{"rejection_reason":"n/a"}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("PROCUREMENT_NOT_FOUND"))
	})

	It("should mark the legacy endpoint as deprecated", func() {
		payload, _ := json.Marshal(procurement.SubmitDTO{SareeName: "Paithani", ProcurementCostINR: 8350})
		req := httptest.NewRequest(http.MethodPost, "/procurements/legacy", bytes.NewReader(payload))
		req.Header.Set("X-Test-User", "staff")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Deprecation")).To(Equal("true"))

		var body map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("procurement_status", "approved"))
		Expect(body).To(HaveKeyWithValue("selling_price_usd", 120.0))

		w = do(http.MethodGet, "/procurements", "staff", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var all []procurement.Record
		Expect(json.NewDecoder(w.Body).Decode(&all)).To(Succeed())
		Expect(all).To(HaveLen(1))
	})
})
