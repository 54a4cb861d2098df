package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Load 从 YAML 字节解码一份配置，未知字段一律报错（严格模式），并在解码
// 成功后立即执行范围校验
func Load(data []byte) (*Config, error) {
	cfg := NewConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: strict decode failed: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
