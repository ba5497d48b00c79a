// Package kvstoretest holds the behaviour every kvstore backend must show,
// written as ginkgo specs that backend test suites include.
package kvstoretest

import (
	"context"
	"errors"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// DescribeStore registers the behaviour every backend shares. newStore runs
// before each test and returns an empty store plus a namespace unique to it.
func DescribeStore(newStore func() (kvstore.Store, string)) {
	var (
		ctx   context.Context
		store kvstore.Store
		ns    string
	)

	BeforeEach(func() {
		ctx = context.Background()
		store, ns = newStore()
	})

	key := func(name string) string { return kvstore.Key(ns, name) }

	It("should report missing keys as ErrNotFound", func() {
		_, err := store.Get(ctx, key("missing"))
		Expect(err).To(MatchError(kvstore.ErrNotFound))
	})

	It("should overwrite values whole", func() {
		Expect(store.Set(ctx, key("a"), []byte(`[1,2,3]`))).To(Succeed())
		Expect(store.Set(ctx, key("a"), []byte(`[4]`))).To(Succeed())

		v, err := store.Get(ctx, key("a"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(v)).To(Equal(`[4]`))
	})

	It("should delete keys", func() {
		Expect(store.Set(ctx, key("a"), []byte("x"))).To(Succeed())
		Expect(store.Delete(ctx, key("a"))).To(Succeed())

		_, err := store.Get(ctx, key("a"))
		Expect(err).To(MatchError(kvstore.ErrNotFound))
	})

	It("should ping", func() {
		Expect(store.Ping(ctx)).To(Succeed())
	})

	Describe("Update", func() {
		It("should commit every write when fn succeeds", func() {
			Expect(store.Set(ctx, key("pending"), []byte("p0"))).To(Succeed())

			err := store.Update(ctx, func(tx kvstore.Tx) error {
				v, err := tx.Get(ctx, key("pending"))
				Expect(err).NotTo(HaveOccurred())
				Expect(string(v)).To(Equal("p0"))

				Expect(tx.Set(ctx, key("pending"), []byte("p1"))).To(Succeed())
				Expect(tx.Set(ctx, key("history"), []byte("h1"))).To(Succeed())

				v, err = tx.Get(ctx, key("history"))
				Expect(err).NotTo(HaveOccurred())
				Expect(string(v)).To(Equal("h1"))
				return nil
			}, key("pending"), key("history"))
			Expect(err).NotTo(HaveOccurred())

			p, _ := store.Get(ctx, key("pending"))
			h, _ := store.Get(ctx, key("history"))
			Expect(string(p)).To(Equal("p1"))
			Expect(string(h)).To(Equal("h1"))
		})

		It("should discard every write when fn fails", func() {
			Expect(store.Set(ctx, key("pending"), []byte("p0"))).To(Succeed())
			boom := errors.New("boom")

			err := store.Update(ctx, func(tx kvstore.Tx) error {
				Expect(tx.Set(ctx, key("pending"), []byte("p1"))).To(Succeed())
				Expect(tx.Set(ctx, key("history"), []byte("h1"))).To(Succeed())
				return boom
			}, key("pending"), key("history"))
			Expect(err).To(MatchError(boom))

			p, _ := store.Get(ctx, key("pending"))
			Expect(string(p)).To(Equal("p0"))
			_, err = store.Get(ctx, key("history"))
			Expect(err).To(MatchError(kvstore.ErrNotFound))
		})

		It("should apply deletes made inside fn", func() {
			Expect(store.Set(ctx, key("a"), []byte("x"))).To(Succeed())

			Expect(store.Update(ctx, func(tx kvstore.Tx) error {
				return tx.Delete(ctx, key("a"))
			}, key("a"))).To(Succeed())

			_, err := store.Get(ctx, key("a"))
			Expect(err).To(MatchError(kvstore.ErrNotFound))
		})
	})
}
