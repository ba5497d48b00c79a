package internal_test

import (
	"testing"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

const testSecret = "0123456789abcdef0123456789abcdef"

var _ = Describe("Config", func() {
	var cfg internal.Config

	BeforeEach(func() {
		cfg = internal.DefaultConfig()
		cfg.Security.SessionSecret = testSecret
	})

	It("should accept the defaults once a session secret is set", func() {
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should reject a short session secret", func() {
		cfg.Security.SessionSecret = "short"
		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("SessionSecret"))
	})

	It("should reject an unknown storage driver", func() {
		cfg.Storage.Driver = "etcd"
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("Driver")))
	})

	It("should require a DSN for postgres", func() {
		cfg.Storage.Driver = internal.StorageDriverPostgres
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("postgres.source")))
	})

	It("should reject more idle than open postgres connections", func() {
		cfg.Storage.Driver = internal.StorageDriverPostgres
		cfg.Storage.Postgres.Source = "postgres://localhost/koe"
		cfg.Storage.Postgres.MaxOpenConns = 2
		cfg.Storage.Postgres.MaxIdleConns = 4
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns")))
	})

	It("should reject a negative minimum withdrawal", func() {
		cfg.Payout.MinimumWithdrawal = -1
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("MinimumWithdrawal")))
	})

	It("should require a metrics path when metrics are enabled", func() {
		cfg.Observability.Metrics.Path = ""
		Expect(cfg.Validate()).To(HaveOccurred())

		cfg.Observability.Metrics.Enabled = false
		Expect(cfg.Validate()).To(Succeed())
	})

	Describe("helpers", func() {
		It("should split allowed origins", func() {
			cfg.Server.AllowedOrigins = "http://a.test, http://b.test ,"
			Expect(cfg.Server.AllowedOriginList()).To(Equal([]string{"http://a.test", "http://b.test"}))
		})

		It("should add a busy timeout to bare sqlite paths only", func() {
			Expect(cfg.Storage.SQLite.SQLiteDSN()).To(Equal("koe-dashboard.db?_busy_timeout=5000"))

			cfg.Storage.SQLite.Path = "file:x.db?mode=rwc"
			Expect(cfg.Storage.SQLite.SQLiteDSN()).To(Equal("file:x.db?mode=rwc"))
		})
	})
})

var _ = Describe("AppError", func() {
	It("should match sentinels by type and code through wrapping", func() {
		err := internal.ErrInvalidOutcome.WithCause(internal.ErrInvalidToken)
		Expect(err).To(MatchError(internal.ErrInvalidOutcome))

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(400))
		Expect(internal.ErrInvalidOutcome.Cause).To(BeNil())
	})

	It("should surface the first field error as its message", func() {
		err := internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
		Expect(err.Error()).To(Equal("name is required"))
	})
})
