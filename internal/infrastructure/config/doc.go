// Package config handles loading and validating Motion Bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML or JSON files
//   - Overriding with environment variables
//   - Validation of required fields and camera profiles
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (broker password, metrics token) should be set via
//     environment variables rather than the config file
//   - The config file should have restricted permissions (0600)
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - No runtime overhead after initial load
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTTServer)
package config
