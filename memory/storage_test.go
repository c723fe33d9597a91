package memory

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Storage", func() {
	var storage *Storage

	BeforeEach(func() {
		storage = NewStorage(4 * MB)
	})

	It("should report its capacity", func() {
		Expect(storage.Capacity()).To(Equal(4 * MB))
	})

	It("should read back written data", func() {
		err := storage.Write(1024, []byte{1, 2, 3, 4})
		Expect(err).ToNot(HaveOccurred())

		data, err := storage.Read(1024, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read unwritten locations as zero", func() {
		data, err := storage.Read(2*MB, 8)
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal(make([]byte, 8)))
	})

	It("should handle access spanning allocation units", func() {
		payload := make([]byte, 8192)
		for i := range payload {
			payload[i] = byte(i)
		}

		err := storage.Write(4000, payload)
		Expect(err).ToNot(HaveOccurred())

		data, err := storage.Read(4000, 8192)
		Expect(err).ToNot(HaveOccurred())
		Expect(data).To(Equal(payload))
	})

	It("should reject writes beyond the capacity", func() {
		err := storage.Write(4*MB-2, []byte{1, 2, 3})
		Expect(err).To(HaveOccurred())
	})

	It("should reject reads beyond the capacity", func() {
		_, err := storage.Read(4*MB, 1)
		Expect(err).To(HaveOccurred())
	})
})
