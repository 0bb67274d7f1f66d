package domain

import "maps"

// FlowType names a user pool authentication flow. Values match the provider's
// AuthFlowType strings.
type FlowType string

const (
	FlowAdminUserPassword FlowType = "ADMIN_USER_PASSWORD_AUTH"
	FlowAdminNoSRP        FlowType = "ADMIN_NO_SRP_AUTH"
	FlowUserPassword      FlowType = "USER_PASSWORD_AUTH"
	FlowUserSRP           FlowType = "USER_SRP_AUTH"
	FlowRefreshToken      FlowType = "REFRESH_TOKEN_AUTH"
	FlowCustom            FlowType = "CUSTOM_AUTH"
)

// Parameter keys sent with an authentication request.
const (
	ParamUsername   = "USERNAME"
	ParamPassword   = "PASSWORD"
	ParamSecretHash = "SECRET_HASH"
)

// FlowRequest is one of AdminInitiate or UserInitiate.
type FlowRequest interface {
	Flow() FlowType
	Parameters() map[string]string
	// WithParameters returns a copy carrying params as its parameter map.
	WithParameters(params map[string]string) FlowRequest

	flowRequest()
}

// AdminInitiate is the administrator-initiated call shape. It names the pool.
type AdminInitiate struct {
	UserPoolID string
	ClientID   string
	FlowType   FlowType
	Params     map[string]string
}

// UserInitiate is the user-initiated call shape. It never names the pool.
type UserInitiate struct {
	ClientID string
	FlowType FlowType
	Params   map[string]string
}

func (AdminInitiate) flowRequest() {}
func (UserInitiate) flowRequest() {}

func (r AdminInitiate) Flow() FlowType { return r.FlowType }
func (r UserInitiate) Flow() FlowType { return r.FlowType }
func (r AdminInitiate) Parameters() map[string]string { return maps.Clone(r.Params) }
func (r UserInitiate) Parameters() map[string]string { return maps.Clone(r.Params) }

func (r AdminInitiate) WithParameters(params map[string]string) FlowRequest {
	r.Params = maps.Clone(params)
	return r
}

func (r UserInitiate) WithParameters(params map[string]string) FlowRequest {
	r.Params = maps.Clone(params)
	return r
}

// SelectFlow builds the request shape for c.Flow. Only
// FlowAdminUserPassword goes through the admin call; every other flow,
// including ones this package does not know, uses the user call.
func SelectFlow(c Credentials) FlowRequest {
	if c.Flow == FlowAdminUserPassword {
		return AdminInitiate{
			UserPoolID: c.UserPoolID,
			ClientID:   c.ClientID,
			FlowType:   c.Flow,
		}
	}
	return UserInitiate{
		ClientID: c.ClientID,
		FlowType: c.Flow,
	}
}
