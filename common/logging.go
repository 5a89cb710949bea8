package common

import (
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var serviceInstance = uuid.New().String()

func init() {
	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.JSONFormatter{}
	logger.AddHook(&DefaultFieldsHook{})
}

func GetServiceName() string {
	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		name = "archon"
	}
	return name
}

func GetServiceInstance() string {
	return serviceInstance
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}
