package migrations_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Siddharth-Keer/Koe-Dashboard/db/migrations"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMigrations(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Migrations Suite")
}

var _ = Describe("Migrations", func() {
	var (
		ctx context.Context
		db  *sqlx.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = sqlx.Connect("sqlite3", filepath.Join(GinkgoT().TempDir(), "migrate.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)
	})

	It("should create the kv_entries table", func() {
		Expect(migrations.Up(ctx, db.DB, "sqlite3")).To(Succeed())

		version, err := migrations.Version(ctx, db.DB, "sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(int64(2)))

		_, err = db.ExecContext(ctx, "INSERT INTO kv_entries (entry_key, value) VALUES (?, ?)", "k", []byte("v"))
		Expect(err).NotTo(HaveOccurred())

		var value []byte
		Expect(db.GetContext(ctx, &value, "SELECT value FROM kv_entries WHERE entry_key = ?", "k")).To(Succeed())
		Expect(string(value)).To(Equal("v"))
	})

	It("should be idempotent", func() {
		Expect(migrations.Up(ctx, db.DB, "sqlite3")).To(Succeed())
		Expect(migrations.Up(ctx, db.DB, "sqlite3")).To(Succeed())
	})

	It("should roll back one step", func() {
		Expect(migrations.Up(ctx, db.DB, "sqlite3")).To(Succeed())
		Expect(migrations.Down(ctx, db.DB, "sqlite3")).To(Succeed())

		version, err := migrations.Version(ctx, db.DB, "sqlite3")
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(int64(1)))
	})

	It("should reject unknown dialects", func() {
		Expect(migrations.Up(ctx, db.DB, "oracle-ish")).NotTo(Succeed())
	})
})
