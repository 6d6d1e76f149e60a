package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"estate-intake/internal/repository"
	"estate-intake/internal/usecase"
)

// Config is the merged CLI configuration.
type Config struct {
	Table  string `mapstructure:"table"`
	Region string `mapstructure:"region"`
	Output string `mapstructure:"output"`
}

// openStore builds the limits store. Tests replace it.
var openStore = func(ctx context.Context, cfg Config) (usecase.StateLimitStore, error) {
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, errors.New("table name is required (--table or INTAKE_TABLE)")
	}
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.Table)
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfg Config
	var cfgFile string

	root := &cobra.Command{
		Use:          "intakectl",
		Short:        "Operate the estate intake classifier and its state limits",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $INTAKE_CONFIG)")
	flags.String("table", "", "DynamoDB table name")
	flags.String("region", "", "AWS region")
	flags.StringP("output", "o", "text", "output format: text or json")
	_ = v.BindPFlag("table", flags.Lookup("table"))
	_ = v.BindPFlag("region", flags.Lookup("region"))
	_ = v.BindPFlag("output", flags.Lookup("output"))

	current := func() Config { return cfg }
	root.AddCommand(classifyCmd(current), limitsCmd(current))
	return root
}

// loadConfig reads the optional config file and INTAKE_* env vars into v.
func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	v.SetDefault("table", "")
	v.SetDefault("region", "")
	v.SetDefault("output", "text")
	v.SetConfigType("yaml")
	if cfgFile == "" {
		cfgFile = os.Getenv("INTAKE_CONFIG")
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	switch c.Output {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("unknown output format %q", c.Output)
	}
	return c, nil
}
