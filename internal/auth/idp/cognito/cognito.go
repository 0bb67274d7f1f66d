// Package cognito adapts the AWS Cognito user pool API to idp.Provider.
package cognito

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/hail-faro/public-backend/internal/auth/domain"
	"github.com/hail-faro/public-backend/internal/auth/idp"
)

// API is the subset of the Cognito client the adapter calls.
type API interface {
	AdminInitiateAuth(ctx context.Context, in *cip.AdminInitiateAuthInput, opts ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, opts ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
}

// Provider calls a Cognito user pool.
type Provider struct {
	api API
}

var _ idp.Provider = (*Provider)(nil)

// New builds a Provider from an AWS config.
func New(cfg aws.Config) *Provider {
	return NewWithAPI(cip.NewFromConfig(cfg))
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API) *Provider {
	return &Provider{api: api}
}

func (p *Provider) AdminInitiateAuth(ctx context.Context, req domain.AdminInitiate) (*idp.AuthOutput, error) {
	out, err := p.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		AuthFlow:       types.AuthFlowType(req.Flow()),
		ClientId:       aws.String(req.ClientID),
		UserPoolId:     aws.String(req.UserPoolID),
		AuthParameters: req.Parameters(),
	})
	if err != nil {
		return nil, classify(err)
	}
	return toOutput(out.AuthenticationResult, out.ChallengeName), nil
}

func (p *Provider) InitiateAuth(ctx context.Context, req domain.UserInitiate) (*idp.AuthOutput, error) {
	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowType(req.Flow()),
		ClientId:       aws.String(req.ClientID),
		AuthParameters: req.Parameters(),
	})
	if err != nil {
		return nil, classify(err)
	}
	return toOutput(out.AuthenticationResult, out.ChallengeName), nil
}

func toOutput(res *types.AuthenticationResultType, challenge types.ChallengeNameType) *idp.AuthOutput {
	out := &idp.AuthOutput{ChallengeName: string(challenge)}
	if res != nil {
		out.Result = &domain.TokenBundle{
			AccessToken:  aws.ToString(res.AccessToken),
			IDToken:      aws.ToString(res.IdToken),
			RefreshToken: aws.ToString(res.RefreshToken),
			ExpiresIn:    res.ExpiresIn,
		}
	}
	return out
}

// classify maps an SDK error onto an idp kind. Service errors arrive wrapped
// in a response error, so the API check comes first.
func classify(err error) error {
	var (
		canceled  *aws.RequestCanceledError
		apiErr    smithy.APIError
		respErr   *smithyhttp.ResponseError
		sendErr   *smithyhttp.RequestSendError
		serialErr *smithy.SerializationError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &canceled):
		return fmt.Errorf("%w: %w", idp.ErrTimeout, err)
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: %s: %w", idp.ErrService, apiErr.ErrorCode(), err)
	case errors.As(err, &respErr):
		return fmt.Errorf("%w: %w", idp.ErrResponse, err)
	case errors.As(err, &sendErr):
		return fmt.Errorf("%w: %w", idp.ErrDispatch, err)
	case errors.As(err, &serialErr):
		return fmt.Errorf("%w: %w", idp.ErrConstruction, err)
	default:
		return fmt.Errorf("cognito: %w", err)
	}
}
