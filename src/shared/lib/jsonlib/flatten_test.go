package jsonlib_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/audio-worker/src/shared/lib/jsonlib"
	. "github.com/veedubyou/audio-worker/src/shared/testing"
)

type request struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
	Secret string `json:"-"`
}

var _ = Describe("Flatten", func() {
	Describe("Unmarshalling", func() {
		var (
			input   string
			decoded jsonlib.Flatten[request]
			err     error
		)

		JustBeforeEach(func() {
			decoded = jsonlib.Flatten[request]{}
			err = json.Unmarshal([]byte(input), &decoded)
		})

		Context("with defined and extra fields", func() {
			BeforeEach(func() {
				input = `{"id": "abc", "action": "separate_stems", "input_path": "song.mp3", "shifts": 2}`
			})

			It("splits them apart", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded.Defined).To(Equal(request{ID: "abc", Action: "separate_stems"}))
				Expect(decoded.Extra).To(Equal(map[string]any{
					"input_path": "song.mp3",
					"shifts":     float64(2),
				}))
			})
		})

		Context("with an empty omitempty field", func() {
			BeforeEach(func() {
				input = `{"id": "", "action": "extract_midi"}`
			})

			It("doesn't treat it as extra", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded.Extra).To(BeEmpty())
			})
		})

		Context("with a key that only matches an ignored field", func() {
			BeforeEach(func() {
				input = `{"action": "extract_midi", "-": "dash", "Secret": "s"}`
			})

			It("keeps it as extra", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded.Extra).To(HaveKeyWithValue("-", "dash"))
				Expect(decoded.Extra).To(HaveKeyWithValue("Secret", "s"))
			})
		})

		DescribeTable("rejects anything but an object",
			func(raw string) {
				decoded := jsonlib.Flatten[request]{}
				Expect(json.Unmarshal([]byte(raw), &decoded)).NotTo(Succeed())
			},
			Entry("an array", `["separate_stems"]`),
			Entry("a string", `"separate_stems"`),
			Entry("a mistyped defined field", `{"action": 4}`),
		)
	})

	Describe("Marshalling", func() {
		It("writes one flat object", func() {
			flat := jsonlib.Flatten[request]{
				Defined: request{ID: "abc", Action: "separate_stems"},
				Extra:   map[string]any{"input_path": "song.mp3"},
			}

			encoded := ExpectSuccess(json.Marshal(flat))
			Expect(encoded).To(MatchJSON(`{"id": "abc", "action": "separate_stems", "input_path": "song.mp3"}`))
		})

		It("lets the defined fields win", func() {
			flat := jsonlib.Flatten[request]{
				Defined: request{Action: "separate_stems"},
				Extra:   map[string]any{"action": "extract_midi", "id": "sneaky"},
			}

			encoded := ExpectSuccess(json.Marshal(flat))
			Expect(encoded).To(MatchJSON(`{"action": "separate_stems"}`))
		})

		It("survives a round trip", func() {
			flat := jsonlib.Flatten[request]{
				Defined: request{ID: "abc", Action: "get_capabilities"},
				Extra:   map[string]any{"note": "hi"},
			}

			decoded := jsonlib.Flatten[request]{}
			Expect(json.Unmarshal(ExpectSuccess(json.Marshal(flat)), &decoded)).To(Succeed())
			Expect(decoded).To(Equal(flat))
		})
	})

	It("converts between structs and maps", func() {
		asMap := ExpectSuccess(jsonlib.StructToMap(request{ID: "abc", Action: "extract_midi"}))
		Expect(asMap).To(Equal(map[string]any{"id": "abc", "action": "extract_midi"}))

		asStruct := ExpectSuccess(jsonlib.MapToStruct[request](asMap))
		Expect(asStruct).To(Equal(request{ID: "abc", Action: "extract_midi"}))
	})
})
