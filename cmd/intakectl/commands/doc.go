// Package commands defines the intakectl operator CLI.
//
// Commands
//
//   - classify        Classify an intake form file offline
//   - limits list     Print the state-limit table stored in DynamoDB
//   - limits seed     Create state limits from a YAML file
//   - limits defaults Print the built-in limits as a seed file
//
// # Configuration
//
// Flags, INTAKE_* environment variables and an optional YAML config file
// (--config or INTAKE_CONFIG) are merged with viper, flags taking precedence.
package commands
