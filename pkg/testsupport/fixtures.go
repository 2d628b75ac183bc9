package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-sportdata-cache/dto"
)

// FixturePath joins name onto the calling package's testdata directory.
func FixturePath(name string) string {
	return filepath.Join("testdata", name)
}

// LoadFixture reads a testdata file or fails the test.
func LoadFixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// LoadPayload decodes a payload fixture into a fresh T. Payload fields
// carry no tags, so fixture keys are the Go field names.
func LoadPayload[T any, P interface {
	*T
	dto.Payload
}](t testing.TB, name string) P {
	t.Helper()

	p := P(new(T))
	if err := json.Unmarshal(LoadFixture(t, name), p); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
	return p
}
