package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLogger(t *testing.T) {
	tests := []struct {
		name        string
		development bool
		level       string
		wantErr     bool
	}{
		{name: "development default level", development: true},
		{name: "production debug level", development: false, level: "debug"},
		{name: "production warn level", development: false, level: "warn"},
		{name: "unknown level", development: false, level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := NewZapLogger(tt.development, tt.level)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, log)
			log.With("component", "test").Debugf("logger built for %s", tt.name)
		})
	}
}

func TestNewNop(t *testing.T) {
	var log Logger = NewNop()
	assert.NotPanics(t, func() {
		log.Infof("discarded %d", 1)
		log.Errorf("discarded %s", "error")
	})
}
