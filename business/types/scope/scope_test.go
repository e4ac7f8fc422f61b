package scope_test

import (
	"testing"

	"github.com/voxgate/voxgate/business/types/scope"
)

func TestParse(t *testing.T) {
	s, err := scope.Parse("synthesize")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !s.Equal(scope.Synthesize) {
		t.Errorf("expected synthesize, got %s", s)
	}

	if _, err := scope.Parse("delete-everything"); err == nil {
		t.Error("unknown scope should fail to parse")
	}
}

func TestParseMany(t *testing.T) {
	scopes, err := scope.ParseMany([]string{"synthesize", "transcribe", "voices"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(scopes) != 3 {
		t.Fatalf("expected 3 scopes, got %d", len(scopes))
	}

	if _, err := scope.ParseMany([]string{"synthesize", "bogus"}); err == nil {
		t.Error("one invalid element should fail the whole set")
	}
}
