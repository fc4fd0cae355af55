// Package mw provides middleware and registration helpers for the ledstripd HTTP API.
package mw

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// SecurityScheme is the name of the security scheme used in OpenAPI.
const SecurityScheme = "bearerAuth"

// OperationOption is a function that modifies a Huma operation.
type OperationOption func(*huma.Operation)

// Doc sets the tag, summary and description shown in the OpenAPI document.
// An empty description is left unset.
func Doc(tag, summary, description string) OperationOption {
	return func(op *huma.Operation) {
		op.Tags = append(op.Tags, tag)
		op.Summary = summary
		if description != "" {
			op.Description = description
		}
	}
}

// WithOperationID sets a custom operation ID.
func WithOperationID(id string) OperationOption {
	return func(op *huma.Operation) {
		op.OperationID = id
	}
}

// WithDefaultStatus sets the default HTTP status code for successful responses.
func WithDefaultStatus(status int) OperationOption {
	return func(op *huma.Operation) {
		op.DefaultStatus = status
	}
}

// Handler is the signature of every API operation.
type Handler[I, O any] func(ctx context.Context, input *I) (*O, error)

func register[I, O any](api huma.API, op huma.Operation, handler Handler[I, O], opts []OperationOption) {
	for _, opt := range opts {
		opt(&op)
	}
	if op.OperationID == "" {
		op.OperationID = huma.GenerateOperationID(op.Method, op.Path, nil)
	}
	huma.Register[I, O](api, op, handler)
}

// Public registers an operation that needs no token. Its path must also be
// passed to TokenAuth as public.
func Public[I, O any](api huma.API, method, path string, handler Handler[I, O], opts ...OperationOption) {
	register(api, huma.Operation{Method: method, Path: path}, handler, opts)
}

// Protected registers an operation that requires the API token when one is
// configured.
func Protected[I, O any](api huma.API, method, path string, handler Handler[I, O], opts ...OperationOption) {
	register(api, huma.Operation{
		Method:   method,
		Path:     path,
		Security: []map[string][]string{{SecurityScheme: {}}},
	}, handler, opts)
}

// Hidden registers a public operation left out of the OpenAPI document,
// such as the liveness probe.
func Hidden[I, O any](api huma.API, method, path string, handler Handler[I, O]) {
	register(api, huma.Operation{Method: method, Path: path, Hidden: true}, handler, nil)
}
