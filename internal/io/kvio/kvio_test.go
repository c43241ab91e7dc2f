package kvio_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/sji-bdl/bdlimport/internal/ent/kv"
	"github.com/sji-bdl/bdlimport/internal/io/kvio"
)

var _ = Describe("Kvio", func() {
	var dir string
	var store kv.KeyVal

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "kvio")
		Expect(err).ToNot(HaveOccurred())
		store, err = kvio.New(filepath.Join(dir, "kv"))
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("fails when store is not open", func() {
		_, err := store.GetValue([]byte("k"))
		Expect(err).To(HaveOccurred())
		Expect(store.SetValue([]byte("k"), []byte("v"))).ToNot(Succeed())
	})

	It("saves and returns values", func() {
		Expect(store.Open()).To(Succeed())
		Expect(store.SetValue([]byte("oakland"), []byte("point"))).To(Succeed())
		val, err := store.GetValue([]byte("oakland"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(val)).To(Equal("point"))
	})

	It("returns nil for unknown keys", func() {
		Expect(store.Open()).To(Succeed())
		val, err := store.GetValue([]byte("nowhere"))
		Expect(err).ToNot(HaveOccurred())
		Expect(val).To(BeNil())
	})

	It("keeps data between sessions", func() {
		Expect(store.Open()).To(Succeed())
		Expect(store.SetValue([]byte("k"), []byte("v"))).To(Succeed())
		Expect(store.Close()).To(Succeed())

		store2, err := kvio.New(filepath.Join(dir, "kv"))
		Expect(err).ToNot(HaveOccurred())
		Expect(store2.Open()).To(Succeed())
		val, err := store2.GetValue([]byte("k"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(val)).To(Equal("v"))
		Expect(store2.Close()).To(Succeed())
	})
})
