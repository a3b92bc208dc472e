package helpers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	dev := NewLogger("svc", "development")
	assert.Equal(t, logrus.DebugLevel, dev.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)

	prod := NewLogger("svc", "production")
	assert.Equal(t, logrus.InfoLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	LogError(logger, "store unavailable", errors.New("dial tcp"), logrus.Fields{"driver": "postgres"})

	assert.Contains(t, buf.String(), `"error":"dial tcp"`)
	assert.Contains(t, buf.String(), `"driver":"postgres"`)
	assert.Contains(t, buf.String(), `"msg":"store unavailable"`)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	assert.Nil(t, NewRedisClient("", "", 0))
	assert.NotNil(t, NewRedisClient("localhost:6379", "", 0))
}
