package rest_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/events"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store/storetest"
	"github.com/frahmantamala/couture-bookkeeping/internal/expense"
	expensePostgres "github.com/frahmantamala/couture-bookkeeping/internal/expense/postgres"
	"github.com/frahmantamala/couture-bookkeeping/internal/fxrate"
	"github.com/frahmantamala/couture-bookkeeping/internal/procurement"
	procurementPostgres "github.com/frahmantamala/couture-bookkeeping/internal/procurement/postgres"
	"github.com/frahmantamala/couture-bookkeeping/internal/saree"
	sareePostgres "github.com/frahmantamala/couture-bookkeeping/internal/saree/postgres"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport/middleware"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport/rest"
	"github.com/frahmantamala/couture-bookkeeping/internal/user"
	userPostgres "github.com/frahmantamala/couture-bookkeeping/internal/user/postgres"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Suite")
}

type apiClient struct {
	router http.Handler
}

func (c *apiClient) do(method, path, token, contentType, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *apiClient) json(method, path, token, body string) *httptest.ResponseRecorder {
	return c.do(method, path, token, "application/json", body)
}

func (c *apiClient) register(email, role string) {
	w := c.json(http.MethodPost, "/users/register", "", `{"email":"`+email+`","password":"s3cret-pass","role":"`+role+`"}`)
	Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
}

func (c *apiClient) login(email string) string {
	form := url.Values{"username": {email}, "password": {"s3cret-pass"}}
	w := c.do(http.MethodPost, "/token", "", "application/x-www-form-urlencoded", form.Encode())
	Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

	var tokens auth.TokenResponse
	Expect(json.NewDecoder(w.Body).Decode(&tokens)).To(Succeed())
	return tokens.AccessToken
}

func newRouter(loginBurst int) http.Handler {
	db, err := storetest.OpenSQLite()
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := &transport.BaseHandler{Logger: logger}
	bus := events.NewEventBus(logger)

	userService := user.NewService(userPostgres.NewUserRepository(db), bcrypt.MinCost, logger)
	authService := auth.NewService(userService, auth.NewJWTTokenGenerator("router-test-secret-long-enough-for-hs256", 0), logger)

	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(db), logger)
	expense.NewEventHandler(expenseService, logger).RegisterEventHandlers(bus)

	sareeRepo := sareePostgres.NewSareeRepository(db)
	procurementService := procurement.NewService(
		procurementPostgres.NewProcurementRepository(db),
		sareeRepo,
		fxrate.NewStatic(internal.DefaultExchangeRate),
		expenseService,
		bus,
		internal.PricingConfig{},
		logger,
	)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:        auth.NewHandler(authService),
		RBAC:        auth.NewRBACAuthorization(auth.NewRoleChecker(), logger),
		User:        user.NewHandler(userService),
		Saree:       saree.NewHandler(base, saree.NewService(sareeRepo, logger)),
		Procurement: procurement.NewHandler(base, procurementService),
		Expense:     expense.NewHandler(expenseService),
	}, rest.Options{
		DB:             sqlx.NewDb(sqlDB, "sqlite3"),
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:3000"},
		LoginLimiter:   middleware.NewRateLimiter(0.001, loginBurst, logger),
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	})
	return router
}

var _ = Describe("Router", func() {
	var c *apiClient

	BeforeEach(func() {
		c = &apiClient{router: newRouter(20)}
	})

	It("should serve the operational endpoints", func() {
		Expect(c.do(http.MethodGet, "/", "", "", "").Code).To(Equal(http.StatusOK))
		Expect(c.do(http.MethodGet, "/ping", "", "", "").Body.String()).To(ContainSubstring("OK"))

		w := c.do(http.MethodGet, "/health", "", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"healthy"`))

		w = c.do(http.MethodGet, "/openapi.yml", "", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("openapi: 3.0.3"))

		w = c.do(http.MethodGet, "/metrics", "", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("couture_http_requests_total"))
	})

	It("should require a bearer token on protected routes", func() {
		w := c.do(http.MethodGet, "/users/me", "", "", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))

		w = c.do(http.MethodGet, "/procurements", "not-a-token", "", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should leave the catalog public", func() {
		w := c.do(http.MethodGet, "/sarees", "", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(strings.TrimSpace(w.Body.String())).To(Equal("[]"))
	})

	It("should run a procurement from submission to a priced catalog entry", func() {
		c.register("staff@boutique.example", "staff")
		c.register("manager@boutique.example", "manager")
		staffToken := c.login("staff@boutique.example")
		managerToken := c.login("manager@boutique.example")

		w := c.json(http.MethodGet, "/users/users/me", staffToken, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("staff@boutique.example"))
		Expect(w.Body.String()).NotTo(ContainSubstring("s3cret-pass"))

		w = c.json(http.MethodPost, "/procurements", staffToken,
			`{"saree_name":"Kanjivaram Silk","procurement_cost_inr":5000,"image_urls":["https://img.example.com/k.jpg"]}`)
		Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
		var record procurement.Record
		Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())

		Expect(c.json(http.MethodGet, "/procurements/pending", staffToken, "").Code).To(Equal(http.StatusForbidden))
		Expect(c.json(http.MethodPost, "/procurements/"+record.ID+"/approve", staffToken, "").Code).To(Equal(http.StatusForbidden))
		Expect(c.json(http.MethodPost, "/procurements/"+record.ID+"/reject", staffToken, `{"rejection_reason":"self review"}`).Code).To(Equal(http.StatusForbidden))

		w = c.json(http.MethodGet, "/procurements/pending", managerToken, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(record.ID))

		w = c.json(http.MethodPost, "/procurements/"+record.ID+"/approve", managerToken,
			`{"additional_costs_inr":500,"markup_override":30,"exchange_rate_override":0.013}`)
		Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

		w = c.json(http.MethodGet, "/sarees/"+record.SareeID, "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var item saree.Saree
		Expect(json.NewDecoder(w.Body).Decode(&item)).To(Succeed())
		Expect(string(item.ProcurementStatus)).To(Equal("approved"))
		Expect(*item.SellingPriceUSD).To(Equal(92.95))

		w = c.json(http.MethodGet, "/expenses", managerToken, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var expenses []expense.Expense
		Expect(json.NewDecoder(w.Body).Decode(&expenses)).To(Succeed())
		Expect(expenses).To(HaveLen(1))
		Expect(expenses[0].Category).To(Equal("procurement_related"))
		Expect(expenses[0].Amount).To(Equal(6.5))

		Expect(c.json(http.MethodGet, "/expenses", staffToken, "").Code).To(Equal(http.StatusForbidden))
		Expect(c.json(http.MethodPatch, "/expenses/"+expenses[0].ID+"/status", staffToken, `{"status":"rejected"}`).Code).To(Equal(http.StatusForbidden))
		Expect(c.json(http.MethodPatch, "/expenses/"+expenses[0].ID+"/status", managerToken, `{"status":"rejected"}`).Code).To(Equal(http.StatusOK))

		w = c.json(http.MethodPost, "/procurements/"+record.ID+"/reject", managerToken, "")
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should let every reviewer role through and keep staff out", func() {
		for _, role := range []string{"partner", "admin"} {
			email := role + "@boutique.example"
			c.register(email, role)
			w := c.json(http.MethodGet, "/procurements/pending", c.login(email), "")
			Expect(w.Code).To(Equal(http.StatusOK), role)
			Expect(w.Body.String()).To(ContainSubstring("pending_procurements"))
		}

		c.register("staff@boutique.example", "staff")
		staffToken := c.login("staff@boutique.example")
		Expect(c.json(http.MethodPost, "/procurements/unknown/reject", staffToken, "").Code).To(Equal(http.StatusForbidden))
		Expect(c.json(http.MethodPatch, "/expenses/unknown/status", staffToken, `{"status":"approved"}`).Code).To(Equal(http.StatusForbidden))
	})

	It("should throttle repeated logins", func() {
		c = &apiClient{router: newRouter(2)}
		form := url.Values{"username": {"nobody@boutique.example"}, "password": {"wrong-pass"}}.Encode()

		Expect(c.do(http.MethodPost, "/token", "", "application/x-www-form-urlencoded", form).Code).To(Equal(http.StatusUnauthorized))
		Expect(c.do(http.MethodPost, "/token", "", "application/x-www-form-urlencoded", form).Code).To(Equal(http.StatusUnauthorized))

		w := c.do(http.MethodPost, "/token", "", "application/x-www-form-urlencoded", form)
		Expect(w.Code).To(Equal(http.StatusTooManyRequests))
	})
})
