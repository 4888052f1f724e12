package apperrors

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
	}{
		{"InvalidArgument", InvalidArgument("bad param"), KindInvalidArgument, fiber.StatusBadRequest},
		{"NotFound", NotFoundf("no row %d", 7), KindNotFound, fiber.StatusNotFound},
		{"Timeout", Timeout("deadline"), KindTimeout, fiber.StatusRequestTimeout},
		{"Upstream", Upstream(errors.New("boom"), "store failed"), KindUpstream, fiber.StatusBadGateway},
		{"Unclassified", errors.New("plain"), KindUnknown, fiber.StatusInternalServerError},
		{"WrappedKeepsKind", errors.Wrap(NotFound("gone"), "outer"), KindNotFound, fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Fatalf("KindOf = %v, want %v", got, tt.wantKind)
			}
			if got := HTTPStatus(tt.err); got != tt.wantStatus {
				t.Fatalf("HTTPStatus = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	err := NotFoundf("Not found by signature %q", "panorama-1_base-2.png")
	want := `Not found by signature "panorama-1_base-2.png"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := Upstream(errors.New("connection refused"), "object store GET failed")
	if !errors.Is(errors.Wrap(wrapped, "outer"), wrapped) {
		t.Fatal("wrapped upstream error lost its identity")
	}
}
