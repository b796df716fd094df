package main

import (
	"testing"

	"car-rental/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsStartupErrors(t *testing.T) {
	tests := []struct {
		description   string
		connString    string
		secret        string
		expectedError string
	}{
		{
			description:   "missing secret",
			connString:    "mongodb://127.0.0.1:1",
			secret:        "",
			expectedError: "failed to load configuration",
		},
		{
			description:   "unparsable connection string",
			connString:    "not-a-mongo-uri",
			secret:        "run-test-secret",
			expectedError: "failed to connect to database",
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			t.Setenv("MONGODB_CONNSTRING", test.connString)
			t.Setenv("ACCESS_TOKEN_SECRET", test.secret)
			t.Setenv("MONGODB_TIMEOUT", "200ms")

			err := run(logger.Nop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expectedError)
		})
	}
}
