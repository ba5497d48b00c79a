package gormstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/datamodel/kventry"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore/gormstore"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore/kvstoretest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gorm Store Suite")
}

func openSQLite() *gorm.DB {
	path := filepath.Join(GinkgoT().TempDir(), "kv.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(db.AutoMigrate(&kventry.Entry{})).To(Succeed())

	DeferCleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

var _ = Describe("Gorm Store", func() {
	kvstoretest.DescribeStore(func() (kvstore.Store, string) {
		return gormstore.New(openSQLite()), "test"
	})

	It("should name itself after the dialect", func() {
		Expect(gormstore.New(openSQLite()).Name()).To(Equal("sql:sqlite"))
	})

	It("should store one row per key", func() {
		db := openSQLite()
		store := gormstore.New(db)
		ctx := context.Background()

		Expect(store.Set(ctx, "k", []byte("1"))).To(Succeed())
		Expect(store.Set(ctx, "k", []byte("2"))).To(Succeed())

		var count int64
		Expect(db.Model(&kventry.Entry{}).Count(&count).Error).To(Succeed())
		Expect(count).To(Equal(int64(1)))
	})
})
