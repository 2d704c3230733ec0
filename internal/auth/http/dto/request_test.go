package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueTokenRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request IssueTokenRequest
		wantErr bool
	}{
		{
			name:    "valid",
			request: IssueTokenRequest{ClientID: "0191c1a0-0000-7000-8000-000000000001", ClientSecret: "secret"},
		},
		{
			name:    "missing client_id",
			request: IssueTokenRequest{ClientSecret: "secret"},
			wantErr: true,
		},
		{
			name:    "blank client_secret",
			request: IssueTokenRequest{ClientID: "0191c1a0-0000-7000-8000-000000000001", ClientSecret: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
