package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/filehash/pkg/config"
)

var noEnv = config.WithEnv(map[string]string{})

var _ = Describe("Process", func() {
	It("passes plain YAML through", func() {
		out, err := config.Process([]byte("algorithm: sha256\nworkers: 4\n"), noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("algorithm: sha256\nworkers: 4\n"))
	})

	It("resolves the vars section and removes it", func() {
		out, err := config.Process([]byte(`
vars:
  algo: sha512
algorithm: "{{ .algo }}"
`), noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("algorithm: sha512"))
		Expect(string(out)).NotTo(ContainSubstring("vars:"))
	})

	It("resolves vars that reference other vars", func() {
		out, err := config.Process([]byte(`
vars:
  file: "[[ .base ]].sum"
  base: "{{ .name }}"
  name: release
sum_file: "{{ .file }}"
`), noEnv)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("sum_file: release.sum"))
	})

	It("reports circular vars", func() {
		_, err := config.Process([]byte(`
vars:
  a: "{{ .b }}"
  b: "{{ .a }}"
x: "{{ .a }}"
`), noEnv)
		Expect(err).To(MatchError(ContainSubstring("could not be resolved")))
	})

	It("gives the environment priority over WithVars and vars", func() {
		input := []byte(`
vars:
  ALGO: md5
algorithm: "{{ .ALGO }}"
`)
		out, err := config.Process(input, noEnv, config.WithVars(map[string]string{"ALGO": "sha1"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("algorithm: sha1"))

		out, err = config.Process(input,
			config.WithEnv(map[string]string{"ALGO": "sha256"}),
			config.WithVars(map[string]string{"ALGO": "sha1"}),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring("algorithm: sha256"))
	})

	It("supports both delimiter styles", func() {
		out, err := config.Process([]byte("a: \"{{ .X }}\"\nb: \"[[ .X ]]\"\n"),
			config.WithEnv(map[string]string{"X": "y"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal("a: \"y\"\nb: \"y\"\n"))
	})

	DescribeTable("template functions",
		func(input string, env map[string]string, want string) {
			out, err := config.Process([]byte(input), config.WithEnv(env))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(Equal(want))
		},
		Entry("default on missing", `w: "{{ .W | default "8" }}"`, map[string]string{}, `w: "8"`),
		Entry("default on empty", `w: "{{ .W | default "8" }}"`, map[string]string{"W": ""}, `w: "8"`),
		Entry("default keeps value", `w: "{{ .W | default "8" }}"`, map[string]string{"W": "2"}, `w: "2"`),
		Entry("env lookup", `h: "{{ env "HOME_DIR" }}"`, map[string]string{"HOME_DIR": "/srv"}, `h: "/srv"`),
		Entry("required present", `a: "{{ required "need A" .A }}"`, map[string]string{"A": "1"}, `a: "1"`),
	)

	It("fails required on a missing value", func() {
		_, err := config.Process([]byte(`a: "{{ required "A must be set" .A }}"`), noEnv)
		Expect(err).To(MatchError(ContainSubstring("A must be set")))
	})

	It("names the line of an undefined variable", func() {
		_, err := config.Process([]byte("algorithm: sha256\nsum_file: \"{{ .NOPE }}\"\n"), noEnv)
		Expect(err).To(MatchError(ContainSubstring("line 2")))
		Expect(err).To(MatchError(ContainSubstring(".NOPE")))
	})

	It("rejects malformed templates", func() {
		_, err := config.Process([]byte(`a: "{{ .A "`), noEnv)
		Expect(err).To(MatchError(ContainSubstring("template error")))
	})
})

var _ = Describe("ProcessFile", func() {
	It("reads and renders a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "filehash.yaml")
		Expect(os.WriteFile(path, []byte(`algorithm: "{{ .A }}"`), 0644)).To(Succeed())

		out, err := config.ProcessFile(path, config.WithEnv(map[string]string{"A": "md5"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(Equal(`algorithm: "md5"`))
	})

	It("wraps read errors", func() {
		_, err := config.ProcessFile(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(MatchError(os.ErrNotExist))
		Expect(err).To(MatchError(ContainSubstring("read config")))
	})
})
