package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKebabToSnakeCase(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"provider-url", "provider_url"},
		{"debug", "debug"},
		{"fhe-helper-url", "fhe_helper_url"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.out, KebabToSnakeCase(tt.in))
		})
	}
}

func validConfig() *SchedulerConfig {
	return &SchedulerConfig{
		ProviderUrl:     "http://localhost:7545",
		ContractAddress: "0xad42fdE4D1886169370C89ebe74791Df7Ee326F9",
		NodeId:          "QmNodeA",
		NodePort:        5000,
		MemoryMb:        4096,
		PollInterval:    time.Second,
	}
}

func TestSchedulerConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*SchedulerConfig)
	}{
		{"missing provider url", func(c *SchedulerConfig) { c.ProviderUrl = "" }},
		{"missing contract address", func(c *SchedulerConfig) { c.ContractAddress = "" }},
		{"missing node id", func(c *SchedulerConfig) { c.NodeId = "" }},
		{"zero node port", func(c *SchedulerConfig) { c.NodePort = 0 }},
		{"zero poll interval", func(c *SchedulerConfig) { c.PollInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
