package notify_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gur-shatz/filehash/internal/notify"
	"github.com/gur-shatz/filehash/internal/sumfile"
	"github.com/gur-shatz/filehash/pkg/filehash"
)

var _ = Describe("Notify", func() {
	var (
		buf *bytes.Buffer
		n   *notify.Notifier
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		n = notify.NewWithWriter(buf)
	})

	parseEvent := func(line string) notify.Event {
		idx := strings.Index(line, "] ")
		Expect(idx).To(BeNumerically(">", 0))
		var event notify.Event
		Expect(json.Unmarshal([]byte(line[idx+2:]), &event)).To(Succeed())
		return event
	}

	Describe("Progress", func() {
		It("emits a progress line for a yielded file", func() {
			n.Progress(filehash.Progress{Kind: filehash.Yielded, Done: 3, Path: "a.txt"}, 10)

			line := strings.TrimSpace(buf.String())
			Expect(line).To(HavePrefix("[filehash:progress]"))
			event := parseEvent(line)
			Expect(event.Done).To(Equal(uint64(3)))
			Expect(event.Total).To(Equal(10))
			Expect(event.Path).To(Equal("a.txt"))
		})

		It("emits a failed line with the error", func() {
			err := &filehash.FileError{Path: "b.txt", Err: errors.New("denied")}
			n.Progress(filehash.Progress{Kind: filehash.Failed, Path: "b.txt", Err: err}, 10)

			line := strings.TrimSpace(buf.String())
			Expect(line).To(HavePrefix("[filehash:failed]"))
			event := parseEvent(line)
			Expect(event.Path).To(Equal("b.txt"))
			Expect(event.Error).To(Equal("b.txt: denied"))
		})
	})

	Describe("Digest", func() {
		It("emits the aggregate", func() {
			n.Digest("sha256", "abcd", 5, 1, 1500*time.Millisecond)

			event := parseEvent(strings.TrimSpace(buf.String()))
			Expect(event.Type).To(Equal(notify.EventDigest))
			Expect(event.Algorithm).To(Equal("sha256"))
			Expect(event.Digest).To(Equal("abcd"))
			Expect(event.Files).To(Equal(5))
			Expect(event.Failed).To(Equal(1))
			Expect(event.ElapsedMs).To(Equal(int64(1500)))
		})
	})

	Describe("Changed and Drift", func() {
		It("carries the changeset", func() {
			cs := sumfile.ChangeSet{Added: []string{"new"}, Removed: []string{"old"}}
			n.Changed(cs, "ffff")
			n.Drift(cs)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines).To(HaveLen(2))

			changed := parseEvent(lines[0])
			Expect(changed.Type).To(Equal(notify.EventChanged))
			Expect(changed.Digest).To(Equal("ffff"))
			Expect(changed.Added).To(Equal([]string{"new"}))

			drift := parseEvent(lines[1])
			Expect(drift.Type).To(Equal(notify.EventDrift))
			Expect(drift.Removed).To(Equal([]string{"old"}))
		})
	})

	Describe("Stopping", func() {
		It("emits a bare stopping event", func() {
			n.Stopping()
			Expect(strings.TrimSpace(buf.String())).To(Equal(`[filehash:stopping] {"type":"stopping"}`))
		})
	})
})
