package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type mockUserLookup struct {
	users         map[string]*coreuser.User
	errorToReturn error
}

func newMockUserLookup() *mockUserLookup {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	return &mockUserLookup{
		users: map[string]*coreuser.User{
			"staff@example.com":   {ID: "u-1", Email: "staff@example.com", Role: coreuser.RoleStaff, HashedPassword: string(hash)},
			"manager@example.com": {ID: "u-2", Email: "manager@example.com", Role: coreuser.RoleManager, HashedPassword: string(hash)},
			"partner@example.com": {ID: "u-3", Email: "partner@example.com", Role: coreuser.RolePartner, HashedPassword: string(hash)},
		},
	}
}

func (m *mockUserLookup) GetByEmail(ctx context.Context, email string) (*coreuser.User, error) {
	if m.errorToReturn != nil {
		return nil, m.errorToReturn
	}
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		lookup   *mockUserLookup
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		lookup = newMockUserLookup()
		tokenGen = NewJWTTokenGenerator(testSecret, 0)
		service = NewService(lookup, tokenGen, discardLogger())
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a bearer token that expires in 30 minutes", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "staff@example.com", Password: "correct_password"})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.TokenType).To(gomega.Equal("bearer"))
				gomega.Expect(tokens.ExpiresIn).To(gomega.Equal(int64(1800)))
			})

			ginkgo.It("should carry the email as the token subject", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Username: "Manager@Example.com ", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := tokenGen.ValidateToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.Subject).To(gomega.Equal("manager@example.com"))
				gomega.Expect(claims.Role).To(gomega.Equal("manager"))
				gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(30*time.Minute), 5*time.Second))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should reject an unknown email", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "nobody@example.com", Password: "correct_password"})

				gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
				gomega.Expect(tokens).To(gomega.BeNil())
			})

			ginkgo.It("should reject a wrong password", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Email: "staff@example.com", Password: "wrong_password"})

				gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
				gomega.Expect(tokens).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should require a username", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Password: "correct_password"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("username is required"))
			})

			ginkgo.It("should require a password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Email: "staff@example.com"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when the user store fails", func() {
			ginkgo.It("should surface the failure instead of masking it as bad credentials", func() {
				lookup.errorToReturn = errors.New("database error")

				_, err := service.Authenticate(ctx, LoginDTO{Email: "staff@example.com", Password: "correct_password"})

				gomega.Expect(err).To(gomega.HaveOccurred())
				_, isAppErr := internal.IsAppError(err)
				gomega.Expect(isAppErr).To(gomega.BeFalse())
			})
		})
	})

	ginkgo.Describe("ResolveUser", func() {
		ginkgo.It("should return the user named by a valid token", func() {
			token, err := tokenGen.GenerateAccessToken(lookup.users["partner@example.com"])
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			u, err := service.ResolveUser(ctx, token)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.ID).To(gomega.Equal("u-3"))
			gomega.Expect(u.Role).To(gomega.Equal(coreuser.RolePartner))
		})

		ginkgo.It("should reject a malformed token", func() {
			_, err := service.ResolveUser(ctx, "invalid.token")
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			other := NewJWTTokenGenerator("another-secret-that-is-long-enough-xx", 0)
			token, err := other.GenerateAccessToken(lookup.users["staff@example.com"])
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveUser(ctx, token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject an expired token", func() {
			expired := NewJWTTokenGenerator(testSecret, -1*time.Hour)
			token, err := expired.GenerateAccessToken(lookup.users["staff@example.com"])
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveUser(ctx, token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})

		ginkgo.It("should reject a token whose subject no longer resolves", func() {
			token, err := tokenGen.GenerateAccessToken(&coreuser.User{Email: "ghost@example.com", Role: coreuser.RoleAdmin})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveUser(ctx, token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a token signed with another algorithm", func() {
			claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "staff@example.com",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			}}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveUser(ctx, token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})
	})
})
