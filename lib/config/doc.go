// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads blip client configuration.
//
// Configuration comes from a single file named by the BLIP_CONFIG
// environment variable ([Load]) or a --config flag ([LoadFile]). There
// is no search path and no ~/.config discovery.
//
// YAML files (.yaml, .yml) are parsed with gopkg.in/yaml.v3. JSON files
// (.json, .jsonc) may carry comments and trailing commas; tidwall/jsonc
// strips them before the same decoder runs, since JSON is a subset of
// YAML.
//
// Environment sections (development, staging, production) override base
// values when [Config].Environment matches. ${VAR} and ${VAR:-default}
// patterns are expanded in path and URL fields.
//
// The authorization key never appears in the file. [Config.AuthorizationKey]
// reads BLIP_AUTHORIZATION_KEY (parsed with caarlos0/env) and falls back
// to transport.authorization_key_file.
package config
