package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/store/storetest"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/user"
	userPostgres "github.com/frahmantamala/couture-bookkeeping/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var _ = Describe("User Service", func() {
	var (
		ctx     context.Context
		service *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := storetest.OpenSQLite()
		Expect(err).NotTo(HaveOccurred())
		service = user.NewService(userPostgres.NewUserRepository(db), bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("should default the role to staff and hash the password", func() {
		u, err := service.Register(ctx, user.RegisterDTO{Email: "  Asha@Example.com ", Password: "s3cret-pass"})
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Email).To(Equal("asha@example.com"))
		Expect(u.Role).To(Equal(coreuser.RoleStaff))
		Expect(u.HashedPassword).NotTo(Equal("s3cret-pass"))
		Expect(bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("s3cret-pass"))).To(Succeed())
	})

	It("should keep an explicit role", func() {
		u, err := service.Register(ctx, user.RegisterDTO{Email: "meera@example.com", Password: "s3cret-pass", Role: "partner"})
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Role).To(Equal(coreuser.RolePartner))
	})

	It("should reject a taken email regardless of case", func() {
		_, err := service.Register(ctx, user.RegisterDTO{Email: "asha@example.com", Password: "s3cret-pass"})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Register(ctx, user.RegisterDTO{Email: "ASHA@example.com", Password: "an0ther-pass"})
		Expect(err).To(Equal(internal.ErrEmailAlreadyRegistered))
	})

	It("should reject an unknown role and a short password", func() {
		_, err := service.Register(ctx, user.RegisterDTO{Email: "x@example.com", Password: "s3cret-pass", Role: "owner"})
		var appErr *internal.AppError
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))

		_, err = service.Register(ctx, user.RegisterDTO{Email: "x@example.com", Password: "short"})
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("should reject a password bcrypt cannot hash as a validation error", func() {
		_, err := service.Register(ctx, user.RegisterDTO{Email: "long@example.com", Password: strings.Repeat("a", 80)})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))

		_, err = service.Register(ctx, user.RegisterDTO{Email: "long@example.com", Password: strings.Repeat("a", user.MaxPasswordLength)})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should look users up by normalized email and by id", func() {
		u, err := service.Register(ctx, user.RegisterDTO{Email: "asha@example.com", Password: "s3cret-pass"})
		Expect(err).NotTo(HaveOccurred())

		byEmail, err := service.GetByEmail(ctx, "ASHA@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(byEmail.ID).To(Equal(u.ID))

		byID, err := service.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Email).To(Equal("asha@example.com"))

		_, err = service.GetByID(ctx, "missing")
		Expect(err).To(Equal(internal.ErrUserNotFound))
	})

	Describe("Handler", func() {
		var h *user.Handler

		BeforeEach(func() {
			h = user.NewHandler(service)
		})

		It("should register and omit the password hash", func() {
			req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(`{"email":"asha@example.com","password":"s3cret-pass"}`))
			w := httptest.NewRecorder()
			h.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var body map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("role", "staff"))
			Expect(body).NotTo(HaveKey("hashed_password"))
			Expect(body).NotTo(HaveKey("HashedPassword"))
		})

		It("should answer 400 for an overlong password", func() {
			body := `{"email":"asha@example.com","password":"` + strings.Repeat("p", 100) + `"}`
			w := httptest.NewRecorder()
			h.Register(w, httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(body)))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("VALIDATION_ERROR"))
		})

		It("should answer 409 for a duplicate email", func() {
			for _, want := range []int{http.StatusCreated, http.StatusConflict} {
				req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(`{"email":"asha@example.com","password":"s3cret-pass"}`))
				w := httptest.NewRecorder()
				h.Register(w, req)
				Expect(w.Code).To(Equal(want))
			}
		})

		It("should return the principal from the context", func() {
			me := &coreuser.User{ID: "u-1", Email: "asha@example.com", Role: coreuser.RoleManager}
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req = req.WithContext(auth.ContextWithUser(req.Context(), me))
			w := httptest.NewRecorder()
			h.GetCurrentUser(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"role":"manager"`))
		})

		It("should answer 401 without a principal", func() {
			w := httptest.NewRecorder()
			h.GetCurrentUser(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
