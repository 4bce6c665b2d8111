package transcription_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/worker/internal/application/transcription"
)

var _ = Describe("MIDI files", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "notes.mid")
	})

	It("summarizes the notes that were written", func() {
		notes := []transcription.Note{
			{Key: 60, Velocity: 90, Start: 0, End: 0.5},
			{Key: 64, Velocity: 90, Start: 0.5, End: 1.25},
			{Key: 67, Velocity: 90, Start: 1.0, End: 2.337},
		}
		Expect(transcription.WriteNotes(path, notes)).To(Succeed())

		details, err := transcription.Summarize(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(details.NumNotes).To(Equal(3))
		Expect(details.Duration).To(Equal(2.34))
		Expect(details.Instruments).To(Equal(1))
	})

	It("retriggers a repeated key that starts where the previous one ends", func() {
		notes := []transcription.Note{
			{Key: 69, Velocity: 80, Start: 0, End: 0.5},
			{Key: 69, Velocity: 80, Start: 0.5, End: 1},
		}
		Expect(transcription.WriteNotes(path, notes)).To(Succeed())

		details, err := transcription.Summarize(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(details.NumNotes).To(Equal(2))
		Expect(details.Duration).To(Equal(1.0))
	})

	It("writes a valid file with no notes", func() {
		Expect(transcription.WriteNotes(path, nil)).To(Succeed())

		details, err := transcription.Summarize(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(details.NumNotes).To(BeZero())
		Expect(details.Duration).To(BeZero())
		Expect(details.Instruments).To(BeZero())
	})

	It("fails to summarize a file that is not MIDI", func() {
		_, err := transcription.Summarize(filepath.Join(GinkgoT().TempDir(), "missing.mid"))
		Expect(err).To(HaveOccurred())
	})
})
