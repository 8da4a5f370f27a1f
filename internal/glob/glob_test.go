package glob_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/filehash/internal/glob"
	"github.com/gur-shatz/filehash/pkg/filehash"
)

var _ = Describe("Glob", func() {
	Describe("Parse", func() {
		It("splits include and negated patterns", func() {
			Expect(glob.Parse([]string{"**/*.go", "!**/*_test.go"})).To(Equal([]glob.Pattern{
				{Raw: "**/*.go"},
				{Raw: "**/*_test.go", Negated: true},
			}))
		})
	})

	Describe("Filter", func() {
		It("accepts everything when empty", func() {
			f, err := glob.NewFilter(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.IsEmpty()).To(BeTrue())
			Expect(f.Match("any/thing.bin")).To(BeTrue())
		})

		It("requires an include match when includes are present", func() {
			f, err := glob.NewFilter(glob.Parse([]string{"**/*.go", "go.mod"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Match("main.go")).To(BeTrue())
			Expect(f.Match("cmd/app.go")).To(BeTrue())
			Expect(f.Match("go.mod")).To(BeTrue())
			Expect(f.Match("readme.md")).To(BeFalse())
		})

		It("excludes negated patterns", func() {
			f, err := glob.NewFilter(glob.Parse([]string{"**/*.go", "!**/*.pb.go"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Match("main.go")).To(BeTrue())
			Expect(f.Match("gen/service.pb.go")).To(BeFalse())
		})

		It("builds from flag lists", func() {
			f, err := glob.FromFlags(nil, []string{"**/*.tmp", "!cache/**"})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Match("data/a.bin")).To(BeTrue())
			Expect(f.Match("data/a.tmp")).To(BeFalse())
			Expect(f.Match("cache/x")).To(BeFalse())
		})

		It("rejects malformed patterns", func() {
			_, err := glob.NewFilter(glob.Parse([]string{"[abc"}))
			Expect(err).To(HaveOccurred())
		})

		It("filters collected files", func() {
			tmpDir := GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(tmpDir, "gen"), 0755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tmpDir, "main.go"), []byte("package main"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tmpDir, "gen", "service.pb.go"), []byte("package gen"), 0644)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(tmpDir, "readme.md"), []byte("# readme"), 0644)).To(Succeed())

			f, err := glob.NewFilter(glob.Parse([]string{"**/*.go", "!**/*.pb.go"}))
			Expect(err).NotTo(HaveOccurred())

			files := filehash.CollectFiles([]string{tmpDir}, filehash.WithMatcher(f))
			Expect(files).To(ConsistOf(filepath.Join(tmpDir, "main.go")))
		})
	})
})
