package mcp

import (
	"context"
	"net/http"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	var calls int
	next := func(context.Context, string, sdkmcp.Request) (sdkmcp.Result, error) {
		calls++
		return &sdkmcp.CallToolResult{}, nil
	}
	handler := authMiddleware("s3cret")(next)

	request := func(auth string) sdkmcp.Request {
		header := http.Header{}
		if auth != "" {
			header.Set("Authorization", auth)
		}
		return &sdkmcp.CallToolRequest{Extra: &sdkmcp.RequestExtra{Header: header}}
	}

	_, err := handler(context.Background(), "tools/call", request(""))
	require.ErrorContains(t, err, "missing bearer token")

	_, err = handler(context.Background(), "tools/call", request("Bearer wrong"))
	require.ErrorContains(t, err, "invalid bearer token")

	_, err = handler(context.Background(), "tools/call", &sdkmcp.CallToolRequest{})
	require.ErrorContains(t, err, "missing headers")
	require.Zero(t, calls)

	_, err = handler(context.Background(), "tools/call", request("Bearer s3cret"))
	require.NoError(t, err)
	_, err = handler(context.Background(), "initialize", &sdkmcp.CallToolRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
