package configutil_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/filehash/internal/configutil"
)

var _ = Describe("ResolveYAMLPath", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	touch := func(name string) string {
		p := filepath.Join(dir, name)
		Expect(os.WriteFile(p, []byte("algorithm: sha256\n"), 0644)).To(Succeed())
		return p
	}

	It("keeps an existing path", func() {
		p := touch("filehash.yaml")
		Expect(configutil.ResolveYAMLPath(p)).To(Equal(p))
	})

	It("prefers the exact name when both spellings exist", func() {
		yamlPath := touch("filehash.yaml")
		touch("filehash.yml")
		Expect(configutil.ResolveYAMLPath(yamlPath)).To(Equal(yamlPath))
	})

	It("falls back to .yml", func() {
		ymlPath := touch("filehash.yml")
		Expect(configutil.ResolveYAMLPath(filepath.Join(dir, "filehash.yaml"))).To(Equal(ymlPath))
	})

	It("falls back to .yaml", func() {
		yamlPath := touch("filehash.yaml")
		Expect(configutil.ResolveYAMLPath(filepath.Join(dir, "filehash.yml"))).To(Equal(yamlPath))
	})

	It("returns the original path when nothing exists", func() {
		p := filepath.Join(dir, "filehash.yaml")
		Expect(configutil.ResolveYAMLPath(p)).To(Equal(p))
	})

	It("leaves other extensions alone", func() {
		p := filepath.Join(dir, "filehash.json")
		Expect(configutil.ResolveYAMLPath(p)).To(Equal(p))
	})
})

var _ = Describe("FindYAML", func() {
	It("returns the first directory holding the file", func() {
		first := GinkgoT().TempDir()
		second := GinkgoT().TempDir()
		want := filepath.Join(second, "filehash.yml")
		Expect(os.WriteFile(want, nil, 0644)).To(Succeed())

		got, ok := configutil.FindYAML("filehash.yaml", "", first, second)
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(want))
	})

	It("ignores directories with a matching name", func() {
		dir := GinkgoT().TempDir()
		Expect(os.Mkdir(filepath.Join(dir, "filehash.yaml"), 0755)).To(Succeed())

		_, ok := configutil.FindYAML("filehash.yaml", dir)
		Expect(ok).To(BeFalse())
	})
})
