package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const testSecret = "0123456789abcdef0123456789abcdef"

func setenv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		envFile = filepath.Join(dir, ".env")
	})

	It("should fail validation without a session secret", func() {
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("SessionSecret")))
	})

	It("should start from defaults and apply environment overrides", func() {
		setenv("ENV_SECURITY_SESSION_SECRET", testSecret)
		setenv("ENV_HTTP_SERVER_PORT", "9090")
		setenv("ENV_STORAGE_DRIVER", "memory")
		setenv("ENV_SECURITY_SESSION_DURATION", "30m")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Storage.Driver).To(Equal(internal.StorageDriverMemory))
		Expect(cfg.Security.SessionDuration).To(Equal(30 * time.Minute))
		Expect(cfg.Payout.MinimumWithdrawal).To(Equal(500.0))
		Expect(cfg.Storage.Namespace).To(Equal("koe"))
	})

	It("should read config.yml and the dotenv file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(`
env: test
payout:
  minimum_withdrawal: 250
storage:
  driver: memory
`), 0o600)).To(Succeed())
		Expect(os.WriteFile(envFile, []byte("ENV_SECURITY_SESSION_SECRET="+testSecret+"\n"), 0o600)).To(Succeed())
		DeferCleanup(os.Unsetenv, "ENV_SECURITY_SESSION_SECRET")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Env).To(Equal("test"))
		Expect(cfg.Payout.MinimumWithdrawal).To(Equal(250.0))
		Expect(cfg.Security.SessionSecret).To(Equal(testSecret))
	})

	It("should refuse a malformed config file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte("env: [unterminated"), 0o600)).To(Succeed())
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("error reading config")))
	})
})

var _ = Describe("commands", func() {
	var dir string

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(append([]string{"--config", dir, "--env-file", filepath.Join(dir, ".env")}, args...))
		err := rootCmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		clearData = false
		migrateRollback = false

		setenv("ENV_ENV", "test")
		setenv("ENV_SECURITY_SESSION_SECRET", testSecret)
		setenv("ENV_STORAGE_DRIVER", "sqlite")
		setenv("ENV_STORAGE_SQLITE_PATH", filepath.Join(dir, "koe.db"))
		setenv("ENV_OBSERVABILITY_LOGGING_LEVEL", "error")
	})

	It("should seed, submit, resolve and report through the sqlite store", func() {
		out, err := run("seed")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Seeded 3 pending requests"))

		out, err = run("seed")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("already present"))

		out, err = run("payouts", "submit", "--name", "Mike Johnson", "--hours", "20", "--earnings", "5000", "--amount", "800", "--method", "PayPal")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("request 5 submitted"))

		out, err = run("payouts", "resolve", "5", "--outcome", "approve")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("request 5 Approved"))

		out, err = run("payouts", "resolve", "5", "--outcome", "reject")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("not pending"))

		out, err = run("payouts", "stats")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"totalUsers":4,"pendingCount":3,"approvedCount":1,"rejectedCount":0,"approvedAmountTotal":800}`))

		out, err = run("payouts", "list")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Sarah Williams"))

		out, err = run("payouts", "history")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Mike Johnson"))
		Expect(out).To(ContainSubstring("approved 1 (800.00) rejected 0"))
	})

	It("should refuse a submission below the minimum", func() {
		_, err := run("payouts", "submit", "--name", "Mike Johnson", "--amount", "100", "--method", "Wise")
		Expect(err).To(MatchError(internal.ErrBelowMinimumWithdrawal))
	})

	It("should clear before seeding on request", func() {
		_, err := run("payouts", "resolve", "1", "--outcome", "reject")
		Expect(err).NotTo(HaveOccurred())

		out, err := run("seed", "--clear")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Cleared"))
		Expect(out).To(ContainSubstring("Seeded 3 pending requests"))

		out, err = run("payouts", "stats")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(`{"totalUsers":3,"pendingCount":3,"approvedCount":0,"rejectedCount":0,"approvedAmountTotal":0}`))
	})

	It("should report the schema version after migrating", func() {
		out, err := run("migrate")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("schema version 2"))
	})

	It("should refuse to migrate a store that is not SQL backed", func() {
		setenv("ENV_STORAGE_DRIVER", "memory")
		_, err := run("migrate")
		Expect(err).To(MatchError(ContainSubstring("not SQL backed")))
	})
})

var _ = Describe("buildTestEvent", func() {
	at := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	It("should build payout events from flags", func() {
		eventAmount = "1500"
		ev, err := buildTestEvent(events.EventTypePayoutRejected, at)
		Expect(err).NotTo(HaveOccurred())

		payoutEvent, ok := ev.(*events.PayoutEvent)
		Expect(ok).To(BeTrue())
		Expect(payoutEvent.Status).To(Equal("Rejected"))
		Expect(payoutEvent.Amount.String()).To(Equal("1500"))
	})

	It("should carry a message for other types", func() {
		eventData = "hello"
		ev, err := buildTestEvent("custom.ping", at)
		Expect(err).NotTo(HaveOccurred())
		Expect(ev.EventType()).To(Equal("custom.ping"))
		Expect(ev.Payload()).To(HaveKeyWithValue("message", "hello"))
	})

	It("should reject a malformed amount", func() {
		eventAmount = "lots"
		_, err := buildTestEvent(events.EventTypePayoutSubmitted, at)
		Expect(err).To(HaveOccurred())
	})
})
