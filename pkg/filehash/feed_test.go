package filehash

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"io"
	"testing/iotest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("feed", func() {
	It("keeps the chunks written before a read error", func() {
		readErr := errors.New("device gone")
		r := io.MultiReader(bytes.NewReader([]byte("partial")), iotest.ErrReader(readErr))

		h := sha256.New()
		Expect(feed(r, h, make([]byte, 3))).To(MatchError(readErr))

		want := sha256.Sum256([]byte("partial"))
		Expect(h.Sum(nil)).To(Equal(want[:]))
	})

	It("stops cleanly at end of stream", func() {
		h := sha256.New()
		Expect(feed(bytes.NewReader(nil), h, make([]byte, PageSize))).To(Succeed())

		want := sha256.Sum256(nil)
		Expect(h.Sum(nil)).To(Equal(want[:]))
	})
})
