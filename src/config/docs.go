// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config loads the validator configuration from JSON or YAML files.
//
// Configuration priority:
//  1. Built-in defaults ([Default])
//  2. The file named by the caller, or by the X509_VALIDATOR_CONFIG_FILE
//     environment variable when the caller passes an empty path
//  3. X509_VALIDATOR_LOG_LEVEL, overriding the log level
//
// Example YAML:
//
//	validators:
//	  generic: true
//	  path: true
//	  ocsp: true
//	  crl: true
//	crl:
//	  maxResponseSize: 5242880
//	  cacheSize: 10
//	  cacheTTLMinutes: 60
//	http:
//	  timeoutSeconds: 10
//	log:
//	  format: json
//	  level: debug
package config
