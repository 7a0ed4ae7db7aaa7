package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceAcceptsBothEncodings(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"a","price":"499.00"}`), &p))
	require.InDelta(t, 499, float64(p.Price), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"a","price":499.5}`), &p))
	require.InDelta(t, 499.5, float64(p.Price), 1e-9)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"a","price":""}`), &p))
	require.Zero(t, float64(p.Price))

	require.Error(t, json.Unmarshal([]byte(`{"id":1,"name":"a","price":"not a number"}`), &p))
}

func TestSessionAuthenticated(t *testing.T) {
	require.False(t, Session{}.Authenticated())
	require.True(t, Session{Token: "t"}.Authenticated())
}
