package docs

import (
	"reflect"
	"testing"
)

func TestTopics(t *testing.T) {
	t.Parallel()

	want := []string{"config", "contacts", "gestures", "terminal"}
	if got := Topics(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Topics: got %v want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	if body, ok := Get(" Gestures "); !ok || body == "" {
		t.Fatalf("expected gestures topic")
	}
	for _, bad := range []string{"", "nope", "../docs", "content/gestures"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}
