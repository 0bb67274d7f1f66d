// Package idp describes the identity provider a login is authenticated
// against. Adapters translate their transport errors into the kinds below so
// nothing above this package sees SDK error types.
package idp

import (
	"context"
	"errors"

	"github.com/hail-faro/public-backend/internal/auth/domain"
)

// Failure kinds of a provider call.
var (
	ErrConstruction = errors.New("idp: request construction failed")
	ErrDispatch     = errors.New("idp: request dispatch failed")
	ErrResponse     = errors.New("idp: invalid response")
	ErrService      = errors.New("idp: service error")
	ErrTimeout      = errors.New("idp: request timed out")
)

// AuthOutput is the provider's answer to an authentication call. Result is
// nil when the provider answered with a challenge instead of tokens.
type AuthOutput struct {
	Result        *domain.TokenBundle
	ChallengeName string
}

// Provider issues the two authentication call shapes.
type Provider interface {
	AdminInitiateAuth(ctx context.Context, req domain.AdminInitiate) (*AuthOutput, error)
	InitiateAuth(ctx context.Context, req domain.UserInitiate) (*AuthOutput, error)
}

// Dispatch sends req through the call matching its shape.
func Dispatch(ctx context.Context, p Provider, req domain.FlowRequest) (*AuthOutput, error) {
	switch r := req.(type) {
	case domain.AdminInitiate:
		return p.AdminInitiateAuth(ctx, r)
	case domain.UserInitiate:
		return p.InitiateAuth(ctx, r)
	default:
		// FlowRequest is sealed; only a nil request gets here.
		return nil, ErrConstruction
	}
}
