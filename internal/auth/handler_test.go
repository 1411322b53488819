package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth HTTP", func() {
	var (
		lookup   *mockUserLookup
		tokenGen *JWTTokenGenerator
		handler  *Handler
		rbac     *RBACAuthorization
	)

	ginkgo.BeforeEach(func() {
		lookup = newMockUserLookup()
		tokenGen = NewJWTTokenGenerator(testSecret, 0)
		handler = NewHandler(NewService(lookup, tokenGen, discardLogger()))
		rbac = NewRBACAuthorization(NewRoleChecker(), discardLogger())
	})

	decodeError := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var body struct {
			Error map[string]interface{} `json:"error"`
		}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		return body.Error
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("should accept the password form", func() {
			form := url.Values{"username": {"staff@example.com"}, "password": {"correct_password"}}
			req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var tokens TokenResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(gomega.Succeed())
			gomega.Expect(tokens.TokenType).To(gomega.Equal("bearer"))
			gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should accept a JSON body", func() {
			req := httptest.NewRequest(http.MethodPost, "/token",
				strings.NewReader(`{"email":"manager@example.com","password":"correct_password"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should answer bad credentials with 401 and a bearer challenge", func() {
			form := url.Values{"username": {"staff@example.com"}, "password": {"nope"}}
			req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Header().Get("WWW-Authenticate")).To(gomega.Equal("Bearer"))
			gomega.Expect(decodeError(rec)["code"]).To(gomega.Equal("INVALID_CREDENTIALS"))
		})
	})

	ginkgo.Describe("AuthMiddleware and RBAC", func() {
		var reached bool

		protected := func(h http.Handler) http.Handler {
			return handler.AuthMiddleware(h)
		}
		okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			u, ok := UserFromContext(r.Context())
			gomega.Expect(ok).To(gomega.BeTrue())
			w.Header().Set("X-User", u.Email)
			w.WriteHeader(http.StatusNoContent)
		})

		bearer := func(email string) string {
			token, err := tokenGen.GenerateAccessToken(lookup.users[email])
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			return "Bearer " + token
		}

		ginkgo.BeforeEach(func() {
			reached = false
		})

		ginkgo.It("should reject a request without a token", func() {
			rec := httptest.NewRecorder()
			protected(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/procurements", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeError(rec)["code"]).To(gomega.Equal("MISSING_TOKEN"))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should put the resolved user in the request context", func() {
			req := httptest.NewRequest(http.MethodGet, "/procurements", nil)
			req.Header.Set("Authorization", bearer("staff@example.com"))
			rec := httptest.NewRecorder()

			protected(okHandler).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(rec.Header().Get("X-User")).To(gomega.Equal("staff@example.com"))
		})

		ginkgo.It("should forbid staff on manager routes", func() {
			req := httptest.NewRequest(http.MethodGet, "/procurements/pending", nil)
			req.Header.Set("Authorization", bearer("staff@example.com"))
			rec := httptest.NewRecorder()

			protected(rbac.RequireManager()(okHandler)).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(decodeError(rec)["code"]).To(gomega.Equal("INSUFFICIENT_ROLE"))
			gomega.Expect(reached).To(gomega.BeFalse())
		})

		ginkgo.It("should let every reviewer role through manager routes", func() {
			for _, email := range []string{"manager@example.com", "partner@example.com"} {
				reached = false
				req := httptest.NewRequest(http.MethodGet, "/procurements/pending", nil)
				req.Header.Set("Authorization", bearer(email))
				rec := httptest.NewRecorder()

				protected(rbac.RequireManager()(okHandler)).ServeHTTP(rec, req)

				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
				gomega.Expect(reached).To(gomega.BeTrue())
			}
		})

		ginkgo.It("should report an unauthenticated request when mounted without the auth middleware", func() {
			rec := httptest.NewRecorder()
			rbac.RequireRoles(coreuser.RoleAdmin)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
