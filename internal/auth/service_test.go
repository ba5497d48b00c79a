package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/auth"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport/middleware"
	"github.com/go-chi/chi"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("JWTTokenGenerator", func() {
	var (
		now       time.Time
		generator *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		generator = auth.NewJWTTokenGenerator(testSecret, time.Hour, "koe-dashboard").
			WithClock(func() time.Time { return now })
	})

	It("should round-trip email and role", func() {
		token, expiresAt, err := generator.GenerateSessionToken("admin@koe.dev", auth.RoleAdmin)
		Expect(err).NotTo(HaveOccurred())
		Expect(expiresAt).To(Equal(now.Add(time.Hour)))

		claims, err := generator.ValidateToken(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Email).To(Equal("admin@koe.dev"))
		Expect(claims.Role).To(Equal(auth.RoleAdmin))
		Expect(claims.Issuer).To(Equal("koe-dashboard"))
		Expect(claims.Session()).To(Equal(&internal.Session{Email: "admin@koe.dev", Role: "admin"}))
	})

	It("should report expired tokens", func() {
		token, _, err := generator.GenerateSessionToken("mike@koe.dev", auth.RoleUser)
		Expect(err).NotTo(HaveOccurred())

		now = now.Add(2 * time.Hour)
		_, err = generator.ValidateToken(token)
		Expect(err).To(MatchError(internal.ErrTokenExpired))
	})

	It("should refuse tokens signed with another secret", func() {
		other := auth.NewJWTTokenGenerator("fedcba9876543210fedcba9876543210", time.Hour, "koe-dashboard")
		token, _, err := other.GenerateSessionToken("mike@koe.dev", auth.RoleUser)
		Expect(err).NotTo(HaveOccurred())

		_, err = generator.ValidateToken(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should refuse tokens from another issuer", func() {
		other := auth.NewJWTTokenGenerator(testSecret, time.Hour, "someone-else")
		token, _, err := other.GenerateSessionToken("mike@koe.dev", auth.RoleUser)
		Expect(err).NotTo(HaveOccurred())

		_, err = generator.ValidateToken(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should refuse an unknown role", func() {
		claims := &auth.Claims{
			Email: "mike@koe.dev",
			Role:  auth.Role("root"),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "koe-dashboard",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		Expect(err).NotTo(HaveOccurred())

		_, err = generator.ValidateToken(token)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should refuse garbage", func() {
		_, err := generator.ValidateToken("not-a-token")
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})
})

var _ = Describe("Service", func() {
	var svc *auth.Service

	BeforeEach(func() {
		svc = auth.NewService(auth.NewJWTTokenGenerator(testSecret, time.Hour, "koe-dashboard"), quietLogger())
	})

	Describe("Login", func() {
		It("should accept any non-empty pair", func() {
			sess, err := svc.Login(context.Background(), auth.LoginDTO{Email: " mike@koe.dev ", Password: "x"}, auth.RoleUser)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Email).To(Equal("mike@koe.dev"))
			Expect(sess.Role).To(Equal(auth.RoleUser))

			claims, err := svc.ValidateAccessToken(sess.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Email).To(Equal("mike@koe.dev"))
		})

		DescribeTable("should require both fields",
			func(dto auth.LoginDTO) {
				_, err := svc.Login(context.Background(), dto, auth.RoleAdmin)
				Expect(err).To(MatchError(internal.ErrMissingCredentials))
			},
			Entry("empty email", auth.LoginDTO{Password: "x"}),
			Entry("blank email", auth.LoginDTO{Email: "   ", Password: "x"}),
			Entry("empty password", auth.LoginDTO{Email: "admin@koe.dev"}),
		)

		It("should refuse an unknown role", func() {
			_, err := svc.Login(context.Background(), auth.LoginDTO{Email: "a@b.c", Password: "x"}, auth.Role("root"))
			Expect(err).To(MatchError(internal.ErrInsufficientRole))
		})
	})

	Describe("ChangePassword", func() {
		DescribeTable("should validate in order",
			func(dto auth.ChangePasswordDTO, expected error) {
				_, err := svc.ChangePassword(context.Background(), dto)
				Expect(err).To(MatchError(expected))
			},
			Entry("missing current", auth.ChangePasswordDTO{NewPassword: "abcdef", ConfirmPassword: "abcdef"}, internal.ErrPasswordFieldsRequired),
			Entry("missing confirmation", auth.ChangePasswordDTO{CurrentPassword: "old", NewPassword: "abc"}, internal.ErrPasswordFieldsRequired),
			Entry("mismatch before length", auth.ChangePasswordDTO{CurrentPassword: "old", NewPassword: "abc", ConfirmPassword: "abd"}, internal.ErrPasswordMismatch),
			Entry("too short", auth.ChangePasswordDTO{CurrentPassword: "old", NewPassword: "abcde", ConfirmPassword: "abcde"}, internal.ErrPasswordTooShort),
		)

		It("should carry the exact messages", func() {
			Expect(internal.ErrPasswordFieldsRequired.Message).To(Equal("Please fill in all password fields."))
			Expect(internal.ErrPasswordMismatch.Message).To(Equal("New passwords do not match."))
			Expect(internal.ErrPasswordTooShort.Message).To(Equal("Password must be at least 6 characters long."))
		})

		It("should accept six characters", func() {
			resp, err := svc.ChangePassword(context.Background(), auth.ChangePasswordDTO{
				CurrentPassword: "old",
				NewPassword:     "abcdef",
				ConfirmPassword: "abcdef",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("Password changed successfully!"))
		})
	})
})

var _ = Describe("Handler", func() {
	var router *chi.Mux

	do := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	login := func(path string) string {
		w := do(http.MethodPost, path, "", auth.LoginDTO{Email: "admin@koe.dev", Password: "pw"})
		Expect(w.Code).To(Equal(http.StatusOK))
		var sess auth.SessionResponse
		Expect(json.NewDecoder(w.Body).Decode(&sess)).To(Succeed())
		return sess.Token
	}

	BeforeEach(func() {
		svc := auth.NewService(auth.NewJWTTokenGenerator(testSecret, time.Hour, "koe-dashboard"), quietLogger())
		h := auth.NewHandler(svc, quietLogger())

		router = chi.NewRouter()
		router.Post("/login", h.Login)
		router.Post("/admin/login", h.AdminLogin)
		router.With(h.AuthMiddleware).Post("/logout", h.Logout)
		router.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Use(middleware.RequireRole(string(auth.RoleAdmin)))
			r.Get("/admin/profile", h.Profile)
			r.Post("/admin/profile/password", h.ChangePassword)
		})
	})

	It("should issue an admin session and serve its profile", func() {
		token := login("/admin/login")
		w := do(http.MethodGet, "/admin/profile", token, nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"email":"admin@koe.dev","role":"admin"}`))
	})

	It("should keep user sessions out of admin routes", func() {
		token := login("/login")
		w := do(http.MethodGet, "/admin/profile", token, nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should require a bearer token", func() {
		w := do(http.MethodGet, "/admin/profile", "", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_TOKEN"))
	})

	It("should answer logout with no content", func() {
		token := login("/login")
		w := do(http.MethodPost, "/logout", token, nil)
		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(w.Body.Len()).To(BeZero())
	})

	It("should refuse malformed bodies", func() {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_BODY"))
	})

	It("should report password validation messages", func() {
		token := login("/admin/login")
		w := do(http.MethodPost, "/admin/profile/password", token, auth.ChangePasswordDTO{CurrentPassword: "a"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("Please fill in all password fields."))
	})
})
