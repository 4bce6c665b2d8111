package testing

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/onsi/gomega"
)

func DecodeJSON[T any](jsonBody io.Reader) T {
	t := new(T)
	err := json.NewDecoder(jsonBody).Decode(t)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	return *t
}

// DecodeJSONLine asserts that the output is exactly one newline terminated
// JSON document and decodes it.
func DecodeJSONLine[T any](output []byte) T {
	gomega.ExpectWithOffset(1, output).To(gomega.HaveSuffix("\n"))
	gomega.ExpectWithOffset(1, bytes.Count(output, []byte("\n"))).To(gomega.Equal(1))

	t := new(T)
	err := json.Unmarshal(output, t)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	return *t
}
