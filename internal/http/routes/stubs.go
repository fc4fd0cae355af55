package routes

import (
	"context"

	"github.com/jmylchreest/ledstripd/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// All handlers return nil responses; these are only used for OpenAPI generation
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: func(_ context.Context, _ *handlers.HealthInput) (*handlers.HealthOutput, error) {
			return nil, nil
		},
		VersionCheck: func(_ context.Context, _ *handlers.VersionInput) (*handlers.VersionOutput, error) {
			return nil, nil
		},
		Strip:   &stubStripHandlers{},
		Logging: &stubLoggingHandlers{},
	}
}

// --- Strip stubs ---

type stubStripHandlers struct{}

func (s *stubStripHandlers) GetStrip(_ context.Context, _ *handlers.GetStripInput) (*handlers.GetStripOutput, error) {
	return nil, nil
}

func (s *stubStripHandlers) SetStripState(_ context.Context, _ *handlers.SetStripStateInput) (*handlers.SetStripStateOutput, error) {
	return nil, nil
}

func (s *stubStripHandlers) Identify(_ context.Context, _ *handlers.IdentifyInput) (*handlers.IdentifyOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.GetLevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.SetLevelOutput, error) {
	return nil, nil
}
