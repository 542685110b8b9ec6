package txn

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("connection refused"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"code 51", mongo.CommandError{Code: 51, Message: "IllegalOperation"}, true},
		{"code 263", mongo.CommandError{Code: 263, Message: "Cannot run 'aggregate' in a multi-document transaction"}, true},
		{"two keywords", errors.New("transaction not supported on this deployment"), true},
		{"single keyword", errors.New("session expired"), false},
		{"replica set message", errors.New("transaction requires a replica set"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
