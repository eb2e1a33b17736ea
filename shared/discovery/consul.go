package discovery

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Config describes how the service announces itself to Consul.
type Config struct {
	ConsulAddr  string `env:"CONSUL_ADDR"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"account-service"`
	ServiceHost string `env:"SERVICE_HOST" envDefault:"localhost"`
}

// Enabled reports whether a Consul agent address was configured.
func (c Config) Enabled() bool {
	return c.ConsulAddr != ""
}

// Registration is a service instance registered with the local Consul agent.
type Registration struct {
	client *api.Client
	id     string
	logger *zerolog.Logger
}

// Register announces an HTTP service on httpPort whose liveness Consul checks over the
// gRPC health protocol on grpcPort.
func Register(cfg Config, httpPort, grpcPort int, logger *zerolog.Logger) (*Registration, error) {
	consulCfg := api.DefaultConfig()
	consulCfg.Address = cfg.ConsulAddr

	client, err := api.NewClient(consulCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	reg := NewServiceRegistration(cfg, httpPort, grpcPort)

	if err := client.Agent().ServiceRegister(reg); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	logger.Info().Str("service_id", reg.ID).Str("consul", cfg.ConsulAddr).Msg("registered with consul")

	return &Registration{client: client, id: reg.ID, logger: logger}, nil
}

// NewServiceRegistration builds the agent registration for one instance.
func NewServiceRegistration(cfg Config, httpPort, grpcPort int) *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s", cfg.ServiceName, uuid.NewString()),
		Name:    cfg.ServiceName,
		Address: cfg.ServiceHost,
		Port:    httpPort,
		Tags:    []string{"http", "api-v1"},
		Check: &api.AgentServiceCheck{
			GRPC:                           fmt.Sprintf("%s:%d", cfg.ServiceHost, grpcPort),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

// Deregister removes the instance from Consul.
func (r *Registration) Deregister() {
	if err := r.client.Agent().ServiceDeregister(r.id); err != nil {
		r.logger.Error().Err(err).Str("service_id", r.id).Msg("failed to deregister from consul")
		return
	}

	r.logger.Info().Str("service_id", r.id).Msg("deregistered from consul")
}
