package logging

import (
	"go.uber.org/zap"
)

// New builds the service logger: development encoding locally, production
// JSON everywhere else, with the service name on every entry.
func New(serviceName, env string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if env == "local" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", serviceName)), nil
}
