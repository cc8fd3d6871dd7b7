package shopapi

import (
	"context"
	"net/http"

	"github.com/talgatbekov/bazarline-backend/pkg/types"
)

// CheckManagerStatus asks the platform whether the current credential holds
// store-manager privileges. Unauthenticated callers surface as
// CodeUnauthorized, which the gate treats as a hard denial. The call is not
// retried here: the gate owns timeout and retry semantics.
func (c *Client) CheckManagerStatus(ctx context.Context) (types.ManagerStatus, error) {
	var result struct {
		Data types.ManagerStatus `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/manager/status", nil, nil, &result); err != nil {
		return types.ManagerStatus{}, err
	}
	return result.Data, nil
}
