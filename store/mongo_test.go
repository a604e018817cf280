package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestHelloSupportsTransactions(t *testing.T) {
	tests := []struct {
		name  string
		reply bson.M
		want  bool
	}{
		{"standalone", bson.M{"isWritablePrimary": true, "maxWireVersion": 17}, false},
		{"replica set primary", bson.M{"isWritablePrimary": true, "setName": "rs0"}, true},
		{"replica set secondary", bson.M{"secondary": true, "setName": "rs0"}, true},
		{"mongos", bson.M{"isWritablePrimary": true, "msg": "isdbgrid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(tt.reply)
			assert.NoError(t, err)
			var hello helloResult
			assert.NoError(t, bson.Unmarshal(raw, &hello))
			assert.Equal(t, tt.want, hello.supportsTransactions())
		})
	}
}
