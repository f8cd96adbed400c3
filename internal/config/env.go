// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables overriding configuration settings.
const (
	EnvProcess   = "PROCPIN_PROCESS"
	EnvCPUs      = "PROCPIN_CPUS"
	EnvMask      = "PROCPIN_MASK"
	EnvInterval  = "PROCPIN_INTERVAL"
	EnvOnce      = "PROCPIN_ONCE"
	EnvColor     = "PROCPIN_COLOR"
	EnvLogLevel  = "PROCPIN_LOG_LEVEL"
	EnvLogFormat = "PROCPIN_LOG_FORMAT"
)

// ApplyEnv overrides the configuration with the PROCPIN_* environment
// variables that are set.
func (c *Config) ApplyEnv() error {
	c.Process = envString(EnvProcess, c.Process)
	if cpus, ok := os.LookupEnv(EnvCPUs); ok {
		c.SetCPUs(cpus)
	}
	if mask, ok := os.LookupEnv(EnvMask); ok {
		if _, both := os.LookupEnv(EnvCPUs); both {
			return fmt.Errorf("%s and %s are mutually exclusive", EnvCPUs, EnvMask)
		}
		c.SetMask(mask)
	}
	var err error
	if c.Interval, err = envDuration(EnvInterval, c.Interval); err != nil {
		return err
	}
	if c.Once, err = envBool(EnvOnce, c.Once); err != nil {
		return err
	}
	if c.Color, err = envBool(EnvColor, c.Color); err != nil {
		return err
	}
	c.Log.Level = envString(EnvLogLevel, c.Log.Level)
	c.Log.Format = envString(EnvLogFormat, c.Log.Format)
	return nil
}

func envString(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return d, nil
	}
	return def, nil
}

func envBool(key string, def bool) (bool, error) {
	if v, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("parse %s: %w", key, err)
		}
		return b, nil
	}
	return def, nil
}
