package main

import (
	"testing"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var settings Settings
		_, err := env.UnmarshalFromEnviron(&settings)
		require.NoError(t, err)

		assert.Equal(t, 3001, settings.Port)
		assert.Equal(t, "", settings.BasePath)
		assert.Equal(t, StoreDriverSQLite, settings.StoreDriver)
		assert.Equal(t, "/tmp/retroboard.db", settings.SQLitePath)
		assert.Equal(t, 256, settings.SendBufferSize)
		assert.Equal(t, 4096, settings.ReadLimit)
		assert.Nil(t, settings.AllowedOriginList())
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("STORE_DRIVER", "mongodb")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

		var settings Settings
		_, err := env.UnmarshalFromEnviron(&settings)
		require.NoError(t, err)

		assert.Equal(t, 8080, settings.Port)
		assert.Equal(t, StoreDriverMongoDB, settings.StoreDriver)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, settings.AllowedOriginList())
	})
}
