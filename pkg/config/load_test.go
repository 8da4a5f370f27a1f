package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/filehash/pkg/algo"
	"github.com/gur-shatz/filehash/pkg/config"
)

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	chdir := func(to string) {
		orig, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(to)).To(Succeed())
		DeferCleanup(os.Chdir, orig)
	}

	It("loads an explicit file over defaults", func() {
		path := write("custom.yaml", `
algorithm: sha256
workers: 3
include: ["**/*.go"]
watch:
  poll: 1s
  debounce: 50ms
`)
		settings, used, err := config.Load(path, noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(used).To(Equal(path))
		Expect(settings.Algorithm).To(Equal("sha256"))
		Expect(settings.Workers).To(Equal(3))
		Expect(settings.Include).To(Equal([]string{"**/*.go"}))
		Expect(settings.Watch.Poll).To(Equal(time.Second))
		Expect(settings.Watch.Debounce).To(Equal(50 * time.Millisecond))
	})

	It("accepts the other YAML extension", func() {
		path := write("custom.yml", "algorithm: md5\n")
		settings, used, err := config.Load(filepath.Join(dir, "custom.yaml"), noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(used).To(Equal(path))
		Expect(settings.Algorithm).To(Equal("md5"))
	})

	It("fails for a missing explicit file", func() {
		_, _, err := config.Load(filepath.Join(dir, "none.yaml"), noEnv)
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("finds filehash.yml in the working directory", func() {
		write("filehash.yml", "algorithm: sha1\n")
		chdir(dir)

		settings, used, err := config.Load("", noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Base(used)).To(Equal("filehash.yml"))
		Expect(settings.Algorithm).To(Equal("sha1"))
	})

	It("returns defaults when nothing is found", func() {
		chdir(dir)

		settings, used, err := config.Load("", noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(used).To(BeEmpty())
		Expect(settings).To(Equal(config.Defaults()))
	})

	It("treats an empty file as defaults", func() {
		path := write("empty.yaml", "")
		settings, _, err := config.Load(path, noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings).To(Equal(config.Defaults()))
	})

	It("rejects invalid settings", func() {
		path := write("bad.yaml", "algorithm: whirlpool\n")
		_, _, err := config.Load(path, noEnv)
		Expect(err).To(MatchError(ContainSubstring("validation failed")))
		Expect(err).To(MatchError(ContainSubstring(path)))
	})

	It("rejects malformed YAML", func() {
		path := write("broken.yaml", "algorithm: [sha256\n")
		_, _, err := config.Load(path, noEnv)
		Expect(err).To(MatchError(ContainSubstring("parse config")))
	})

	It("renders templates before decoding", func() {
		path := write("tmpl.yaml", `sum_file: "{{ .OUT | default "tree.sum" }}"`)
		settings, _, err := config.Load(path, config.WithEnv(map[string]string{"OUT": "ci.sum"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(settings.SumFile).To(Equal("ci.sum"))
	})

	Describe("DefaultYAML", func() {
		It("loads to valid settings", func() {
			path := write("filehash.yaml", string(config.DefaultYAML))
			settings, _, err := config.Load(path, noEnv)
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.Algorithm).To(Equal(algo.Default))
			Expect(settings.SumFile).To(Equal("filehash.sum"))
			Expect(settings.Exclude).To(ContainElement("**/.git/**"))
			Expect(settings.Watch).To(Equal(config.Defaults().Watch))
		})

		It("honors FILEHASH_ALGO", func() {
			path := write("filehash.yaml", string(config.DefaultYAML))
			settings, _, err := config.Load(path, config.WithEnv(map[string]string{"FILEHASH_ALGO": "blake3"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.Algorithm).To(Equal("blake3"))
		})
	})

	Describe("Exists", func() {
		It("checks both extensions", func() {
			write("filehash.yml", "")
			Expect(config.Exists(filepath.Join(dir, "filehash.yaml"))).To(BeTrue())
			Expect(config.Exists(filepath.Join(dir, "other.yaml"))).To(BeFalse())
		})
	})
})
